package docfill

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatterFormat(t *testing.T) {
	date := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		name  string
		value interface{}
		spec  string
		want  string
	}{
		{"nil", nil, "", ""},
		{"nil with spec", nil, "0.00", ""},
		{"string", "Ann", "", "Ann"},
		{"int", 30, "", "30"},
		{"float", 19.99, "", "19.99"},
		{"whole float", 2.0, "", "2"},
		{"bool", true, "", "true"},
		{"list summary", []string{"a", "b"}, "", "[list:2]"},
		{"map summary", map[string]int{"a": 1}, "", "[map:1]"},
		{"date only", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "", "2024-03-05"},
		{"date time", date, "", "2024-03-05 14:07:09"},
		{"upper", "ann", "upper", "ANN"},
		{"named formats ignore case", "ann", "UPPER", "ANN"},
		{"lower", "ANN", "lower", "ann"},
		{"title", "ann lee", "title", "Ann Lee"},
		{"trim", "  x  ", "trim", "x"},
		{"int rounds", 2.6, "int", "3"},
		{"int of text", "abc", "int", "abc"},
		{"number", 1234.5, "number", "1,234.50"},
		{"percent", 0.25, "percent", "25%"},
		{"yesno", 1, "yesno", "yes"},
		{"printf", 3.14159, "%.1f", "3.1"},
		{"printf pointer", func() *int { n := 7; return &n }(), "%03d", "007"},
		{"decimals", 3.14159, "0.00", "3.14"},
		{"integer pattern", 2.4, "0", "2"},
		{"grouped", 1234567.891, "#,##0.00", "1,234,567.89"},
		{"numeric string", "12.5", "0.0", "12.5"},
		{"non numeric value", "n/a", "0.00", "n/a"},
		{"date pattern", date, "dd.MM.yyyy", "05.03.2024"},
		{"date pattern with time", date, "yyyy-MM-dd HH:mm", "2024-03-05 14:07"},
		{"date pattern with literal", date, "d 'of' MMMM", "5 of March"},
		{"date from string", "2024-03-05", "dd/MM/yy", "05/03/24"},
		{"date from unix", int64(0), "yyyy", "1970"},
		{"unknown spec", "Ann", "fancy!", "Ann"},
		{"date pattern on non date", "soon", "yyyy", "soon"},
	}

	f := NewFormatter("en")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.value, tt.spec))
		})
	}
}

func TestFormatterLocale(t *testing.T) {
	de := NewFormatter("de")
	assert.Equal(t, "de", de.Locale().String())
	assert.Equal(t, "1.234,50", de.Format(1234.5, "number"))
	assert.Equal(t, "1.234,5", de.Format(1234.5, "#,##0.0"))

	fallback := NewFormatter("not a locale!")
	assert.Equal(t, "en", fallback.Locale().String())
}

func TestFormatterRegisterFormat(t *testing.T) {
	f := NewFormatter("en")
	f.RegisterFormat("Stars", func(v interface{}, _ language.Tag) (string, bool) {
		n, ok := toFloat(v)
		if !ok {
			return "", false
		}
		out := ""
		for i := 0; i < int(n); i++ {
			out += "*"
		}
		return out, true
	})

	assert.Equal(t, "***", f.Format(3, "stars"))
	assert.Equal(t, "abc", f.Format("abc", "stars"))
}

func TestStringify(t *testing.T) {
	var nilTime *time.Time
	type label string
	type ratio float32

	assert.Equal(t, "", Stringify(nilTime))
	assert.Equal(t, "boom", Stringify(errors.New("boom")))
	assert.Equal(t, "12", Stringify(json.Number("12")))
	assert.Equal(t, "x", Stringify(label("x")))
	assert.Equal(t, "7", Stringify(uint8(7)))
	assert.Equal(t, "0.1", Stringify(float32(0.1)))
	assert.Equal(t, "2.75", Stringify(float32(2.75)))
	assert.Equal(t, "0.3", Stringify(ratio(0.3)))
	a, b := 0.1, 0.2
	assert.Equal(t, "0.3", Stringify(a+b))
}

func TestTranslateDateFormat(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"dd.MM.yy", "02.01.06"},
		{"d/M/yyyy", "2/1/2006"},
		{"HH:mm:ss", "15:04:05"},
		{"hh:mm a", "03:04 PM"},
		{"EEEE, MMMM d", "Monday, January 2"},
		{"EEE MMM", "Mon Jan"},
		{"yyyy-MM-dd'T'HH:mm", "2006-01-02T15:04"},
		{"HH:mm:ss.SSS", "15:04:05.000"},
		{"''yy", "'06"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, translateDateFormat(tt.pattern))
		})
	}
}

func TestIsDatePattern(t *testing.T) {
	assert.True(t, isDatePattern("dd.MM.yyyy"))
	assert.True(t, isDatePattern("d 'of' MMMM"))
	assert.False(t, isDatePattern("upper"))
	assert.False(t, isDatePattern("0.00"))
	assert.False(t, isDatePattern("fancy!"))
}
