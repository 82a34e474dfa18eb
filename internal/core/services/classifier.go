package services

import (
	"regexp"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

// Slot patterns are anchored at the start of the code, so a code only
// qualifies when the marker appears inside its leading word.
var (
	pon1Pattern = regexp.MustCompile(`^\w*E1\w*\b`)
	pon2Pattern = regexp.MustCompile(`^\w*E2\w*\b`)
)

// Overwrite describes a code that lost its slot to another code.
type Overwrite struct {
	GroupKey string `json:"group_key"`

	// Label names the record: the group key, or its output files.
	Label string `json:"label"`

	Slot    domain.Slot `json:"slot"`
	Dropped string      `json:"dropped"`
	Kept    string      `json:"kept"`
}

// ClassifyReport summarises one classification pass.
type ClassifyReport struct {
	// Classified counts codes moved into a slot.
	Classified int

	// Remaining counts codes left in AllPrimaryCodes. Always zero.
	Remaining int

	// Overwritten lists slot conflicts resolved by the policy.
	Overwritten []Overwrite
}

// Classifier redistributes cross-reference codes into slots.
type Classifier struct {
	policy domain.SlotConflictPolicy
}

// NewClassifier creates a classifier with the given conflict policy.
// An unknown policy falls back to last-wins.
func NewClassifier(policy domain.SlotConflictPolicy) *Classifier {
	if !policy.IsValid() {
		policy = domain.SlotConflictLast
	}
	return &Classifier{policy: policy}
}

// SlotFor returns the slot a code belongs to.
func SlotFor(code string) domain.Slot {
	switch {
	case pon1Pattern.MatchString(code):
		return domain.SlotPon1
	case pon2Pattern.MatchString(code):
		return domain.SlotPon2
	default:
		return domain.SlotUni
	}
}

// Classify converts consolidated records to final records. Each record
// gets its own slot assignment; nothing carries over between records.
func (c *Classifier) Classify(records []domain.ConsolidatedRecord) ([]domain.FinalRecord, ClassifyReport) {
	var report ClassifyReport
	out := make([]domain.FinalRecord, 0, len(records))

	for i := range records {
		final, overwrites := c.classifyOne(records[i].Clone())
		report.Classified += len(records[i].AllPrimaryCodes) - len(final.AllPrimaryCodes)
		report.Remaining += len(final.AllPrimaryCodes)
		report.Overwritten = append(report.Overwritten, overwrites...)
		out = append(out, final)
	}

	return out, report
}

func (c *Classifier) classifyOne(rec domain.ConsolidatedRecord) (domain.FinalRecord, []Overwrite) {
	final := domain.FinalRecord{
		GroupKey:       rec.GroupKey,
		SecondaryCode:  rec.SecondaryCode,
		Remarks:        rec.Remarks,
		ExtractedDate:  rec.ExtractedDate,
		AllOutputFiles: rec.AllOutputFiles,
	}

	var overwrites []Overwrite

	for _, code := range rec.AllPrimaryCodes {
		slot := SlotFor(code)
		current := final.Slot(slot)

		switch {
		case current == nil:
			final.SetSlot(slot, code)
		case c.policy == domain.SlotConflictFirst:
			overwrites = append(overwrites, Overwrite{
				GroupKey: final.Key(), Label: final.Label(), Slot: slot, Dropped: code, Kept: *current,
			})
		default:
			overwrites = append(overwrites, Overwrite{
				GroupKey: final.Key(), Label: final.Label(), Slot: slot, Dropped: *current, Kept: code,
			})
			final.SetSlot(slot, code)
		}
	}

	// Uni is the fallback, so every code has been placed and
	// AllPrimaryCodes stays empty.
	return final, overwrites
}
