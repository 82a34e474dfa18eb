package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConsolidated() ConsolidatedRecord {
	return ConsolidatedRecord{
		GroupKey:        StringPtr("OF12345"),
		SecondaryCode:   StringPtr("12345678"),
		Remarks:         StringPtr("ACCESS VIA REAR DOOR"),
		ExtractedDate:   StringPtr("2024-03-15"),
		AllPrimaryCodes: []string{"OF12345", "OF12345E1"},
		AllOutputFiles:  []string{"A1_OF12345.pdf", "A2_OF12345E1.pdf"},
	}
}

func TestConsolidatedRecord_Clone(t *testing.T) {
	orig := sampleConsolidated()

	clone := orig.Clone()
	*clone.GroupKey = "changed"
	clone.AllPrimaryCodes[0] = "changed"
	clone.AllOutputFiles = append(clone.AllOutputFiles, "extra.pdf")

	assert.Equal(t, "OF12345", *orig.GroupKey)
	assert.Equal(t, "OF12345", orig.AllPrimaryCodes[0])
	assert.Len(t, orig.AllOutputFiles, 2)
}

func TestConsolidatedRecord_Clone_NilFields(t *testing.T) {
	clone := ConsolidatedRecord{}.Clone()

	assert.Nil(t, clone.GroupKey)
	assert.Nil(t, clone.SecondaryCode)
	assert.Empty(t, clone.AllPrimaryCodes)
}

func TestConsolidatedRecord_AsRawRecords(t *testing.T) {
	raws := sampleConsolidated().AsRawRecords()

	require.Len(t, raws, 2)
	assert.Equal(t, "OF12345E1", *raws[1].PrimaryCode)
	assert.Equal(t, "A2_OF12345E1.pdf", raws[1].SourceFile)
	assert.Equal(t, "12345678", *raws[1].SecondaryCode)
	assert.Equal(t, "2024-03-15", *raws[0].ExtractedDate)
}

func TestConsolidatedRecord_AsRawRecords_MissingFile(t *testing.T) {
	rec := sampleConsolidated()
	rec.AllOutputFiles = rec.AllOutputFiles[:1]

	raws := rec.AsRawRecords()

	require.Len(t, raws, 2)
	assert.Equal(t, "", raws[1].SourceFile)
}

func TestConsolidatedRecord_AsRawRecords_Keyless(t *testing.T) {
	rec := ConsolidatedRecord{
		Remarks:         StringPtr("no order"),
		AllPrimaryCodes: []string{},
		AllOutputFiles:  []string{"x.pdf"},
	}

	raws := rec.AsRawRecords()

	require.Len(t, raws, 1)
	assert.Nil(t, raws[0].PrimaryCode)
	assert.Equal(t, "x.pdf", raws[0].SourceFile)
	assert.Equal(t, "no order", *raws[0].Remarks)
}

func TestFinalRecord_Label(t *testing.T) {
	rec := FinalRecord{GroupKey: StringPtr("OF12345"), AllOutputFiles: []string{"a.pdf"}}
	assert.Equal(t, "OF12345", rec.Label())

	rec.GroupKey = nil
	rec.AllOutputFiles = []string{"a.pdf", "b.pdf"}
	assert.Equal(t, "a.pdf, b.pdf", rec.Label())
}

func TestFinalRecord_Slots(t *testing.T) {
	var rec FinalRecord

	assert.Nil(t, rec.Slot(SlotPon1))
	rec.SetSlot(SlotPon1, "OF12345E1")
	rec.SetSlot(SlotUni, "OF12345")
	rec.SetSlot(Slot("other"), "ignored")

	assert.Equal(t, "OF12345E1", *rec.Slot(SlotPon1))
	assert.Nil(t, rec.Slot(SlotPon2))
	assert.Equal(t, "OF12345", *rec.Slot(SlotUni))
	assert.Nil(t, rec.Slot(Slot("other")))
}

func TestFinalRecord_Fields(t *testing.T) {
	rec := FinalRecord{
		GroupKey:       StringPtr("OF12345"),
		Remarks:        StringPtr("R"),
		AllOutputFiles: []string{"A1_OF12345.pdf"},
		Uni:            StringPtr("OF12345"),
	}

	fields := rec.Fields()

	assert.Equal(t, map[string]any{
		FieldGroupKey:       "OF12345",
		FieldRemarks:        "R",
		FieldUni:            "OF12345",
		FieldAllOutputFiles: []string{"A1_OF12345.pdf"},
	}, fields)

	fields[FieldAllOutputFiles].([]string)[0] = "mutated"
	assert.Equal(t, "A1_OF12345.pdf", rec.AllOutputFiles[0])
}

func TestFinalRecord_Key(t *testing.T) {
	assert.Equal(t, "", (&FinalRecord{}).Key())
	assert.Equal(t, "OF1", (&FinalRecord{GroupKey: StringPtr("OF1")}).Key())
}

func TestGroupIndex(t *testing.T) {
	idx := NewGroupIndex()

	require.NoError(t, idx.Add(sampleConsolidated()))
	require.NoError(t, idx.Add(ConsolidatedRecord{AllOutputFiles: []string{"x.pdf"}}))
	require.NoError(t, idx.Add(ConsolidatedRecord{AllOutputFiles: []string{"y.pdf"}}))
	require.NoError(t, idx.Add(ConsolidatedRecord{GroupKey: StringPtr("OF99999")}))

	assert.Equal(t, 4, idx.Len())

	rec, ok := idx.Lookup("OF12345")
	require.True(t, ok)
	assert.Equal(t, "12345678", *rec.SecondaryCode)

	_, ok = idx.Lookup("")
	assert.False(t, ok)

	records := idx.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "OF12345", *records[0].GroupKey)
	assert.Nil(t, records[1].GroupKey)
	assert.Equal(t, "OF99999", *records[3].GroupKey)
}

func TestGroupIndex_DuplicateKey(t *testing.T) {
	idx := NewGroupIndex()
	require.NoError(t, idx.Add(sampleConsolidated()))

	err := idx.Add(sampleConsolidated())

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 1, idx.Len())
}

func TestGroupIndex_StoresCopies(t *testing.T) {
	idx := NewGroupIndex()
	rec := sampleConsolidated()
	require.NoError(t, idx.Add(rec))

	rec.AllPrimaryCodes[0] = "mutated"
	records := idx.Records()
	records[0].AllOutputFiles[0] = "mutated"

	stored, _ := idx.Lookup("OF12345")
	assert.Equal(t, "OF12345", stored.AllPrimaryCodes[0])
	assert.Equal(t, "A1_OF12345.pdf", stored.AllOutputFiles[0])
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(StringPtr("x")))
}
