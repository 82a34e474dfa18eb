package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

type stubExtractor struct {
	types []string
	name  string
	err   error
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.types }

func (s *stubExtractor) Extract(_ context.Context, _ *domain.RawDocument) ([]domain.Attachment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Attachment{{Name: s.name}}, nil
}

func TestRegistry_Extract(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{types: []string{domain.MIMETypeRFC822}, name: "eml"},
		&stubExtractor{types: []string{domain.MIMETypeOutlookMessage}, name: "msg"},
	)

	got, err := r.Extract(context.Background(), &domain.RawDocument{MIMEType: "Message/RFC822; charset=utf-8"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "eml", got[0].Name)

	got, err = r.Extract(context.Background(), &domain.RawDocument{MIMEType: domain.MIMETypeOutlookMessage})
	require.NoError(t, err)
	assert.Equal(t, "msg", got[0].Name)
}

func TestRegistry_Extract_Unsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry(&stubExtractor{types: []string{domain.MIMETypeRFC822}, name: "first"})
	r.Register(&stubExtractor{types: []string{domain.MIMETypeRFC822}, name: "second"})

	got, err := r.Extract(context.Background(), &domain.RawDocument{MIMEType: domain.MIMETypeRFC822})
	require.NoError(t, err)
	assert.Equal(t, "second", got[0].Name)
}

func TestRegistry_PropagatesExtractorError(t *testing.T) {
	boom := errors.New("corrupt")
	r := NewRegistry(&stubExtractor{types: []string{domain.MIMETypeRFC822}, err: boom})

	_, err := r.Extract(context.Background(), &domain.RawDocument{MIMEType: domain.MIMETypeRFC822})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(&stubExtractor{types: []string{domain.MIMETypeRFC822, domain.MIMETypeOutlookMessage}})

	assert.Equal(t, []string{domain.MIMETypeOutlookMessage, domain.MIMETypeRFC822}, r.SupportedMIMETypes())
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("A1_OF12345.pdf", ".pdf"))
	assert.True(t, HasExtension("A1_OF12345.PDF", ".pdf"))
	assert.False(t, HasExtension("A1_OF12345.pdf.txt", ".pdf"))
	assert.False(t, HasExtension("df", ".pdf"))
}
