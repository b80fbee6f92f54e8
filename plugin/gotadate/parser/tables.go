package parser

import (
	"strings"
	"time"

	"github.com/hrygo/gotadate/plugin/gotadate/token"
)

// monthNames maps lower-case month names and abbreviations to months.
var monthNames = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

var ordinalSuffixes = map[string]struct{}{
	"st": {},
	"nd": {},
	"rd": {},
	"th": {},
}

// relativeDays maps relative-date keywords to day offsets from the reference.
var relativeDays = map[string]int{
	"yesterday": -1,
	"tomorrow":  1,
}

const (
	keywordAt = "at"
	keywordAM = "am"
	keywordPM = "pm"

	// eveningCutoff is the highest bare hour after "at" read as an evening hour.
	eveningCutoff = 7
)

func lowerWord(t *token.Token) (string, bool) {
	if t == nil || t.Kind() != token.KindWord {
		return "", false
	}
	return strings.ToLower(t.Text()), true
}

func monthOf(t *token.Token) (time.Month, bool) {
	w, ok := lowerWord(t)
	if !ok {
		return 0, false
	}
	m, ok := monthNames[w]
	return m, ok
}

func isMonthName(t *token.Token) bool {
	_, ok := monthOf(t)
	return ok
}

func isOrdinal(t *token.Token) bool {
	w, ok := lowerWord(t)
	if !ok {
		return false
	}
	_, ok = ordinalSuffixes[w]
	return ok
}

func relativeOffset(t *token.Token) (int, bool) {
	w, ok := lowerWord(t)
	if !ok {
		return 0, false
	}
	n, ok := relativeDays[w]
	return n, ok
}

func isMeridiem(t *token.Token) bool {
	return t.IsWord(keywordAM) || t.IsWord(keywordPM)
}
