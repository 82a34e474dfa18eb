package services

import "unicode"

// MinDigitRun is the shortest trailing digit run kept by TrimToLastDigits.
const MinDigitRun = 3

// TrimToLastDigits derives a group key from a primary code.
//
// The value is scanned right to left. When a run of at least MinDigitRun
// digits is broken by a non-digit, the value is cut immediately after that
// run; shorter runs are discarded and scanning continues. A nil value stays nil.
func TrimToLastDigits(value *string) *string {
	if value == nil {
		return nil
	}

	runes := []rune(*value)
	digitCount := 0
	lastDigitIndex := -1

	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsDigit(runes[i]) {
			digitCount++
			if lastDigitIndex < 0 {
				lastDigitIndex = i
			}
			continue
		}
		if digitCount >= MinDigitRun {
			trimmed := string(runes[:lastDigitIndex+1])
			return &trimmed
		}
		digitCount = 0
		lastDigitIndex = -1
	}

	if digitCount < MinDigitRun {
		out := *value
		return &out
	}
	trimmed := string(runes[:lastDigitIndex+1])
	return &trimmed
}
