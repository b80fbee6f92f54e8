package parser

import (
	"zombiezen.com/go/gregorian"
)

// tryDate attempts the date recognizers in order. found reports whether a
// date was recognized; ok is false when a fragment started but did not match.
func (p *DateParser) tryDate() (date gregorian.Date, found, ok bool) {
	switch {
	case p.isDate():
		date, ok = p.parseDate()
	case p.isRelativeDate():
		date, ok = p.parseRelativeDate()
	case isMonthName(p.token):
		date, ok = p.parseDateMonthFirst()
	default:
		return gregorian.Date{}, false, true
	}
	return date, ok, ok
}

// isDate reports whether the current token starts a numeric date:
// a number followed by '/', a month name or an ordinal suffix.
func (p *DateParser) isDate() bool {
	if !p.token.IsNumber() {
		return false
	}
	la := p.peek(0)
	return la.Is('/') || isMonthName(la) || isOrdinal(la)
}

func (p *DateParser) isRelativeDate() bool {
	_, ok := relativeOffset(p.token)
	return ok
}

// isTime reports whether the current token starts a time: the keyword "at",
// or a number followed by ':' or am/pm.
func (p *DateParser) isTime() bool {
	if p.token.IsWord(keywordAt) {
		return true
	}
	if !p.token.IsNumber() {
		return false
	}
	la := p.peek(0)
	return la.Is(':') || isMeridiem(la)
}

// parseDate parses
//
//	number [ordinal] "/" number "/" number
//	number [ordinal] month [number]
//
// When the middle component cannot be a month but the first can, the two
// are swapped.
func (p *DateParser) parseDate() (gregorian.Date, bool) {
	day, ok := p.getInt()
	if !ok {
		return gregorian.Date{}, false
	}
	if isOrdinal(p.token) {
		p.advance()
	}

	var month, year int64
	switch {
	case p.token.Is('/'):
		p.advance()
		if month, ok = p.getInt(); !ok {
			return gregorian.Date{}, false
		}
		if !p.check('/') {
			return gregorian.Date{}, false
		}
		if year, ok = p.getInt(); !ok {
			return gregorian.Date{}, false
		}
	case isMonthName(p.token):
		m, _ := p.getMonth()
		month = int64(m)
		if p.token.IsNumber() {
			year, _ = p.getInt()
		}
	default:
		return gregorian.Date{}, false
	}

	if month > 12 && day <= 12 {
		day, month = month, day
	}
	if year == 0 {
		year = int64(p.reference().Year())
	}
	return newDate(year, month, day)
}

// parseRelativeDate parses "yesterday" or "tomorrow".
func (p *DateParser) parseRelativeDate() (gregorian.Date, bool) {
	offset, ok := relativeOffset(p.token)
	if !ok {
		return gregorian.Date{}, false
	}
	p.advance()
	return addDays(dateOf(p.reference()), offset), true
}

// parseDateMonthFirst parses
//
//	month number [ordinal] [","] [number]
func (p *DateParser) parseDateMonthFirst() (gregorian.Date, bool) {
	month, ok := p.getMonth()
	if !ok {
		return gregorian.Date{}, false
	}
	day, ok := p.getInt()
	if !ok {
		return gregorian.Date{}, false
	}
	if isOrdinal(p.token) {
		p.advance()
	}
	p.check(',')

	var year int64
	if p.token.IsNumber() {
		year, _ = p.getInt()
	}
	if year == 0 {
		year = int64(p.reference().Year())
	}
	return newDate(year, int64(month), day)
}

// parseTime parses
//
//	["at"] number [":" number [":" number]] ["am" | "pm"]
//
// A bare hour introduced by "at" without am/pm or seconds, from 0 to 7, is
// read as an evening hour: "at 6" is 18:00 while "at 8" stays 08:00.
func (p *DateParser) parseTime() (timeOfDay, bool) {
	disambiguate := false
	if p.token.IsWord(keywordAt) {
		disambiguate = true
		p.advance()
	}

	var hour, minute, second int64
	var ok bool
	if hour, ok = p.getInt(); !ok {
		return timeOfDay{}, false
	}
	if p.check(':') {
		if minute, ok = p.getInt(); !ok {
			return timeOfDay{}, false
		}
		if p.check(':') {
			if second, ok = p.getInt(); !ok {
				return timeOfDay{}, false
			}
			disambiguate = false
		}
	}

	switch {
	case p.token.IsWord(keywordAM):
		p.advance()
		disambiguate = false
	case p.token.IsWord(keywordPM):
		p.advance()
		hour = hour%12 + 12
		disambiguate = false
	}

	if disambiguate && hour <= eveningCutoff {
		hour += 12
	}
	return newTimeOfDay(hour, minute, second)
}
