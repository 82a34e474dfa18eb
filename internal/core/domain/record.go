package domain

import "strings"

// Field names used by the generic field mapping handed to exporters
// and the tracking sheet. They match the historical column identifiers.
const (
	FieldPrimaryCode     = "of"
	FieldSecondaryCode   = "fa"
	FieldRemarks         = "remarks"
	FieldDate            = "date"
	FieldSourceFile      = "filename"
	FieldGroupKey        = "of_short"
	FieldAllPrimaryCodes = "all_of"
	FieldAllOutputFiles  = "all_files"
	FieldPon1            = "pon1"
	FieldPon2            = "pon2"
	FieldUni             = "uni"
)

// DefaultExportColumns is the spreadsheet column order.
var DefaultExportColumns = []string{
	FieldGroupKey,
	FieldSecondaryCode,
	FieldDate,
	FieldUni,
	FieldPon1,
	FieldPon2,
	FieldRemarks,
	FieldAllOutputFiles,
}

// Slot is a classification destination for a cross-reference code.
type Slot string

// Available slots. Uni is the catch-all.
const (
	SlotPon1 Slot = FieldPon1
	SlotPon2 Slot = FieldPon2
	SlotUni  Slot = FieldUni
)

// RawRecord holds the fields extracted from one text document.
// A nil pointer means the field's pattern did not match.
type RawRecord struct {
	// PrimaryCode is the first token starting with "OF".
	PrimaryCode *string `json:"of"`

	// SecondaryCode is the 8-digit code following the "FA" label.
	SecondaryCode *string `json:"fa"`

	// Remarks is the text between REMARKS and BILLNM, newlines collapsed.
	Remarks *string `json:"remarks"`

	// SourceFile is the originating text document name.
	SourceFile string `json:"filename"`

	// ExtractedDate is formatted YYYY-MM-DD.
	ExtractedDate *string `json:"date"`
}

// ConsolidatedRecord merges every raw record sharing a group key.
// Scalar fields come from the first raw record seen for the key.
type ConsolidatedRecord struct {
	// GroupKey is the normalised primary code. Nil for records without one.
	GroupKey *string `json:"of_short"`

	SecondaryCode *string `json:"fa"`
	Remarks       *string `json:"remarks"`
	ExtractedDate *string `json:"date"`

	// AllPrimaryCodes lists every primary code in encounter order.
	AllPrimaryCodes []string `json:"all_of"`

	// AllOutputFiles lists the attachment file names in encounter order.
	AllOutputFiles []string `json:"all_files"`
}

// Clone returns a deep copy so callers cannot mutate shared lists.
func (c ConsolidatedRecord) Clone() ConsolidatedRecord {
	out := c
	out.GroupKey = clonePtr(c.GroupKey)
	out.SecondaryCode = clonePtr(c.SecondaryCode)
	out.Remarks = clonePtr(c.Remarks)
	out.ExtractedDate = clonePtr(c.ExtractedDate)
	out.AllPrimaryCodes = append([]string(nil), c.AllPrimaryCodes...)
	out.AllOutputFiles = append([]string(nil), c.AllOutputFiles...)
	return out
}

// AsRawRecords expands the record back into one raw record per primary
// code, paired with the output file at the same position. A record
// without codes expands to one keyless raw record per output file.
// Consolidating the result reproduces the record.
func (c ConsolidatedRecord) AsRawRecords() []RawRecord {
	if len(c.AllPrimaryCodes) == 0 {
		out := make([]RawRecord, 0, len(c.AllOutputFiles))
		for _, file := range c.AllOutputFiles {
			out = append(out, RawRecord{
				SecondaryCode: clonePtr(c.SecondaryCode),
				Remarks:       clonePtr(c.Remarks),
				SourceFile:    file,
				ExtractedDate: clonePtr(c.ExtractedDate),
			})
		}
		return out
	}

	out := make([]RawRecord, 0, len(c.AllPrimaryCodes))
	for i, code := range c.AllPrimaryCodes {
		var file string
		if i < len(c.AllOutputFiles) {
			file = c.AllOutputFiles[i]
		}
		out = append(out, RawRecord{
			PrimaryCode:   StringPtr(code),
			SecondaryCode: clonePtr(c.SecondaryCode),
			Remarks:       clonePtr(c.Remarks),
			SourceFile:    file,
			ExtractedDate: clonePtr(c.ExtractedDate),
		})
	}
	return out
}

// FinalRecord is a consolidated record after cross-reference classification.
type FinalRecord struct {
	GroupKey      *string `json:"of_short"`
	SecondaryCode *string `json:"fa"`
	Remarks       *string `json:"remarks"`
	ExtractedDate *string `json:"date"`

	// AllPrimaryCodes holds codes left unclassified. Empty after a full pass.
	AllPrimaryCodes []string `json:"all_of,omitempty"`

	AllOutputFiles []string `json:"all_files"`

	Pon1 *string `json:"pon1,omitempty"`
	Pon2 *string `json:"pon2,omitempty"`
	Uni  *string `json:"uni,omitempty"`
}

// Slot returns the value held in the given slot.
func (f *FinalRecord) Slot(s Slot) *string {
	switch s {
	case SlotPon1:
		return f.Pon1
	case SlotPon2:
		return f.Pon2
	case SlotUni:
		return f.Uni
	default:
		return nil
	}
}

// SetSlot stores a value in the given slot.
func (f *FinalRecord) SetSlot(s Slot, value string) {
	v := value
	switch s {
	case SlotPon1:
		f.Pon1 = &v
	case SlotPon2:
		f.Pon2 = &v
	case SlotUni:
		f.Uni = &v
	}
}

// Fields returns the record as a generic field mapping.
// Absent fields are omitted; list fields stay []string.
func (f *FinalRecord) Fields() map[string]any {
	fields := make(map[string]any, 10)
	putPtr(fields, FieldGroupKey, f.GroupKey)
	putPtr(fields, FieldSecondaryCode, f.SecondaryCode)
	putPtr(fields, FieldRemarks, f.Remarks)
	putPtr(fields, FieldDate, f.ExtractedDate)
	putPtr(fields, FieldPon1, f.Pon1)
	putPtr(fields, FieldPon2, f.Pon2)
	putPtr(fields, FieldUni, f.Uni)
	if len(f.AllPrimaryCodes) > 0 {
		fields[FieldAllPrimaryCodes] = append([]string(nil), f.AllPrimaryCodes...)
	}
	if len(f.AllOutputFiles) > 0 {
		fields[FieldAllOutputFiles] = append([]string(nil), f.AllOutputFiles...)
	}
	return fields
}

// Key returns the group key or an empty string when absent.
func (f *FinalRecord) Key() string {
	return Deref(f.GroupKey)
}

// Label names the record in reports: its group key, or its output files
// when it has none.
func (f *FinalRecord) Label() string {
	if key := f.Key(); key != "" {
		return key
	}
	return strings.Join(f.AllOutputFiles, ", ")
}

// GroupIndex is an insertion-ordered mapping from group key to
// consolidated record. Records without a key are kept as separate
// entries and are never reachable through Lookup.
type GroupIndex struct {
	entries []*ConsolidatedRecord
	byKey   map[string]int
}

// NewGroupIndex creates an empty index.
func NewGroupIndex() *GroupIndex {
	return &GroupIndex{byKey: make(map[string]int)}
}

// Lookup returns the record stored under key.
func (g *GroupIndex) Lookup(key string) (*ConsolidatedRecord, bool) {
	i, ok := g.byKey[key]
	if !ok {
		return nil, false
	}
	return g.entries[i], true
}

// Add appends a record. It returns ErrInvalidInput when the record's
// key is already present.
func (g *GroupIndex) Add(rec ConsolidatedRecord) error {
	if rec.GroupKey != nil {
		if _, ok := g.byKey[*rec.GroupKey]; ok {
			return ErrInvalidInput
		}
		g.byKey[*rec.GroupKey] = len(g.entries)
	}
	stored := rec.Clone()
	g.entries = append(g.entries, &stored)
	return nil
}

// Len returns the number of consolidated records.
func (g *GroupIndex) Len() int {
	return len(g.entries)
}

// Records returns deep copies of all records in first-seen order.
func (g *GroupIndex) Records() []ConsolidatedRecord {
	out := make([]ConsolidatedRecord, len(g.entries))
	for i, rec := range g.entries {
		out[i] = rec.Clone()
	}
	return out
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func putPtr(m map[string]any, key string, p *string) {
	if p != nil {
		m[key] = *p
	}
}
