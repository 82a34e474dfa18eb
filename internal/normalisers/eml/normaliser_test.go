package eml

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

func rawDoc(content string) *domain.RawDocument {
	return &domain.RawDocument{
		SourceID: "mail",
		URI:      "file:///mail/asr.eml",
		MIMEType: domain.MIMETypeRFC822,
		Content:  []byte(strings.ReplaceAll(content, "\n", "\r\n")),
	}
}

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteString("\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{domain.MIMETypeRFC822}, New("").SupportedMIMETypes())
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New("").Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_InvalidMessage(t *testing.T) {
	_, err := New("").Extract(context.Background(), &domain.RawDocument{Content: []byte("no headers and no blank line")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_PlainMessageHasNoAttachments(t *testing.T) {
	doc := rawDoc(`From: noc@example.com
Subject: hello
Content-Type: text/plain

Body text.
`)

	got, err := New("").Extract(context.Background(), doc)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_MultipartWithPDFs(t *testing.T) {
	pdf1 := "%PDF-1.4 first attachment " + strings.Repeat("x", 120)
	pdf2 := "%PDF-1.4 second"
	doc := rawDoc(`From: noc@example.com
Subject: ASR batch
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain

see attached
--inner
Content-Type: text/html

<p>see attached</p>
--inner--
--outer
Content-Type: application/pdf; name="A1_OF12345.pdf"
Content-Disposition: attachment; filename="A1_OF12345.pdf"
Content-Transfer-Encoding: base64

` + wrap(base64.StdEncoding.EncodeToString([]byte(pdf1)), 76) + `
--outer
Content-Type: application/octet-stream; name="A2_OF12345E1.PDF"
Content-Transfer-Encoding: base64

` + base64.StdEncoding.EncodeToString([]byte(pdf2)) + `
--outer
Content-Type: application/msword
Content-Disposition: attachment; filename="notes.doc"

ignored
--outer--
`)

	got, err := New(".pdf").Extract(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A1_OF12345.pdf", got[0].Name)
	assert.Equal(t, "application/pdf", got[0].MIMEType)
	assert.Equal(t, pdf1, string(got[0].Content))
	assert.Equal(t, "A2_OF12345E1.PDF", got[1].Name)
	assert.Equal(t, pdf2, string(got[1].Content))
}

func TestExtract_QuotedPrintableAndEncodedName(t *testing.T) {
	doc := rawDoc(`Content-Type: multipart/mixed; boundary=b

--b
Content-Type: application/pdf
Content-Disposition: attachment; filename="=?utf-8?q?ASR_r=C3=A9sum=C3=A9.pdf?="
Content-Transfer-Encoding: quoted-printable

%PDF caf=C3=A9
--b--
`)

	got, err := New("").Extract(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ASR résumé.pdf", got[0].Name)
	assert.Equal(t, "%PDF café", string(got[0].Content))
}

func TestExtract_SinglePartAttachment(t *testing.T) {
	doc := rawDoc(`Content-Type: application/pdf
Content-Disposition: attachment; filename="C:\\scans\\B7_OF777.pdf"

%PDF raw
`)

	got, err := New("").Extract(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B7_OF777.pdf", got[0].Name)
}

func TestExtract_MissingBoundary(t *testing.T) {
	doc := rawDoc(`Content-Type: multipart/mixed

body
`)

	_, err := New("").Extract(context.Background(), doc)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("").Extract(ctx, rawDoc("Subject: x\n\nbody\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "a.pdf", attachmentName(`attachment; filename="a.pdf"`, map[string]string{"name": "b.pdf"}))
	assert.Equal(t, "b.pdf", attachmentName("", map[string]string{"name": "b.pdf"}))
	assert.Equal(t, "", attachmentName("inline", nil))
	assert.Equal(t, "c.pdf", attachmentName(`attachment; filename="../../c.pdf"`, nil))
}
