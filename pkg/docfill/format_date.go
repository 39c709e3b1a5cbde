package docfill

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// commonDateFormats are tried in order when a string is formatted as a date.
var commonDateFormats = []string{
	// ISO and RFC formats
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",

	// Common formats
	"01/02/2006",
	"01/02/2006 15:04:05",
	"2006/01/02",
	"02.01.2006",
	"02.01.2006 15:04",
	"2.1.2006",

	// Other formats
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006 15:04:05",
}

// parseDate converts times, unix timestamps and date strings to a time.
func parseDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("cannot parse nil as date")
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("cannot parse nil time pointer")
		}
		return *v, nil
	case int64:
		// Values beyond 1e10 are taken as milliseconds
		if v > 1e10 {
			return time.Unix(v/1000, (v%1000)*1e6).UTC(), nil
		}
		return time.Unix(v, 0).UTC(), nil
	case int:
		return parseDate(int64(v))
	case float64:
		return parseDate(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("could not parse date number: %s", v)
		}
		return parseDate(n)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, fmt.Errorf("cannot parse empty string as date")
		}
		for _, format := range commonDateFormats {
			if parsed, err := time.Parse(format, v); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("could not parse date string: %s", v)
	default:
		return time.Time{}, fmt.Errorf("cannot parse %T as date", value)
	}
}

// datePatternLetters are the pattern letters translateDateFormat understands.
const datePatternLetters = "yMdHhmsSaEzXZ"

// isDatePattern reports whether spec is a date pattern such as "dd.MM.yyyy":
// it must contain at least one pattern letter and no other unquoted letters.
func isDatePattern(spec string) bool {
	found := false
	quoted := false
	for _, r := range spec {
		switch {
		case r == '\'':
			quoted = !quoted
		case quoted:
		case strings.ContainsRune(datePatternLetters, r):
			found = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			return false
		}
	}
	return found
}

// translateDateFormat converts a date pattern ("yyyy-MM-dd HH:mm") into a Go
// layout. Text inside single quotes is copied literally.
func translateDateFormat(pattern string) string {
	var sb strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			end := i + 1
			for end < len(runes) && runes[end] != '\'' {
				end++
			}
			if end == i+1 && end < len(runes) {
				// '' is an escaped quote
				sb.WriteRune('\'')
			} else {
				sb.WriteString(string(runes[i+1 : min(end, len(runes))]))
			}
			i = end + 1
			continue
		}

		if !strings.ContainsRune(datePatternLetters, r) {
			sb.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		sb.WriteString(dateLayoutFor(r, n))
		i += n
	}

	return sb.String()
}

func dateLayoutFor(letter rune, count int) string {
	switch letter {
	case 'y':
		if count == 2 {
			return "06"
		}
		return "2006"
	case 'M':
		switch {
		case count >= 4:
			return "January"
		case count == 3:
			return "Jan"
		case count == 2:
			return "01"
		}
		return "1"
	case 'd':
		if count >= 2 {
			return "02"
		}
		return "2"
	case 'H':
		return "15"
	case 'h':
		if count >= 2 {
			return "03"
		}
		return "3"
	case 'm':
		if count >= 2 {
			return "04"
		}
		return "4"
	case 's':
		if count >= 2 {
			return "05"
		}
		return "5"
	case 'S':
		return strings.Repeat("0", count)
	case 'a':
		return "PM"
	case 'E':
		if count >= 4 {
			return "Monday"
		}
		return "Mon"
	case 'z':
		return "MST"
	case 'X':
		switch count {
		case 1:
			return "Z07"
		case 2:
			return "Z0700"
		}
		return "Z07:00"
	case 'Z':
		return "-0700"
	}
	return string(letter)
}
