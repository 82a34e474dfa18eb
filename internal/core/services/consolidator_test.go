package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

func raw(file string, code *string) domain.RawRecord {
	return domain.RawRecord{PrimaryCode: code, SourceFile: file}
}

func TestConsolidator_GroupsByKeyInFirstSeenOrder(t *testing.T) {
	c := NewConsolidator(".txt", ".pdf")
	first := raw("A1.txt", domain.StringPtr("OF111"))
	first.SecondaryCode = domain.StringPtr("11111111")
	later := raw("A3.txt", domain.StringPtr("OF111E1"))
	later.SecondaryCode = domain.StringPtr("99999999")

	idx, report := c.Consolidate(nil, []domain.RawRecord{
		first,
		raw("B.txt", domain.StringPtr("OF222")),
		later,
	})

	assert.Empty(t, report.Warnings)
	records := idx.Records()
	require.Len(t, records, 2)

	assert.Equal(t, "OF111", domain.Deref(records[0].GroupKey))
	assert.Equal(t, []string{"OF111", "OF111E1"}, records[0].AllPrimaryCodes)
	assert.Equal(t, []string{"A1.pdf", "A3.pdf"}, records[0].AllOutputFiles)
	assert.Equal(t, "11111111", domain.Deref(records[0].SecondaryCode), "scalars come from the first record")

	assert.Equal(t, "OF222", domain.Deref(records[1].GroupKey))
	assert.Equal(t, []string{"B.pdf"}, records[1].AllOutputFiles)
}

func TestConsolidator_RecordsWithoutKeyStaySeparate(t *testing.T) {
	c := NewConsolidator(".txt", ".pdf")

	idx, report := c.Consolidate(nil, []domain.RawRecord{
		raw("x.txt", nil),
		raw("y.txt", nil),
	})

	records := idx.Records()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Nil(t, rec.GroupKey)
		assert.Empty(t, rec.AllPrimaryCodes)
		assert.Len(t, rec.AllOutputFiles, 1)
	}
	assert.Len(t, report.Warnings, 2)
}

func TestConsolidator_ExtendsExistingIndex(t *testing.T) {
	c := NewConsolidator(".txt", ".pdf")

	idx, _ := c.Consolidate(nil, []domain.RawRecord{raw("a.txt", domain.StringPtr("OF123"))})
	idx, _ = c.Consolidate(idx, []domain.RawRecord{raw("b.txt", domain.StringPtr("OF123E2"))})

	require.Equal(t, 1, idx.Len())
	rec, ok := idx.Lookup("OF123")
	require.True(t, ok)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, rec.AllOutputFiles)
}

func TestConsolidator_Idempotent(t *testing.T) {
	c := NewConsolidator(".txt", ".pdf")
	input := []domain.RawRecord{
		raw("A1.txt", domain.StringPtr("OF111")),
		raw("B.txt", domain.StringPtr("OF222E1")),
		raw("A2.txt", domain.StringPtr("OF111E2")),
		raw("C.txt", nil),
	}
	input[0].Remarks = domain.StringPtr("expedite")
	input[3].Remarks = domain.StringPtr("no order")

	idx, _ := c.Consolidate(nil, input)
	once := idx.Records()
	require.Len(t, once, 3)

	var expanded []domain.RawRecord
	for _, rec := range once {
		expanded = append(expanded, rec.AsRawRecords()...)
	}
	again, _ := c.Consolidate(nil, expanded)

	assert.Equal(t, once, again.Records())
}

func TestConsolidator_OutputFileName(t *testing.T) {
	c := NewConsolidator(".txt", ".pdf")

	assert.Equal(t, "a.pdf", c.OutputFileName("a.txt"))
	assert.Equal(t, "a.txt.bak", c.OutputFileName("a.txt.bak"))
	assert.Equal(t, "a.TXT", c.OutputFileName("a.TXT"))
	assert.Equal(t, "a.pdf", c.OutputFileName("a.pdf"))
}
