package docfill

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatFunc renders a value for a named format. ok is false when the value
// does not suit the format, in which case default rendering is used.
type FormatFunc func(value interface{}, locale language.Tag) (text string, ok bool)

// Formatter turns resolved values into document text.
type Formatter struct {
	locale language.Tag

	mu    sync.RWMutex
	named map[string]FormatFunc
}

// numericPattern matches specs like 0, 0.00, #,##0.00.
var numericPattern = regexp.MustCompile(`^[#0,]*0(\.0+)?$`)

// NewFormatter creates a formatter for locale (a BCP 47 tag); an invalid or
// empty tag means English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	f := &Formatter{
		locale: tag,
		named:  make(map[string]FormatFunc),
	}
	for name, fn := range builtinFormats {
		f.named[name] = fn
	}
	return f
}

// RegisterFormat adds or replaces a named format.
func (f *Formatter) RegisterFormat(name string, fn FormatFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.named[strings.ToLower(name)] = fn
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag {
	return f.locale
}

// Format renders value using spec. An empty spec gives the default rendering;
// an unrecognized spec falls back to it.
func (f *Formatter) Format(value interface{}, spec string) string {
	if value == nil {
		return ""
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Stringify(value)
	}

	f.mu.RLock()
	fn, ok := f.named[strings.ToLower(spec)]
	f.mu.RUnlock()
	if ok {
		if text, ok := fn(value, f.locale); ok {
			return text
		}
		return Stringify(value)
	}

	if strings.HasPrefix(spec, "%") {
		return fmt.Sprintf(spec, deref(value))
	}

	if numericPattern.MatchString(spec) {
		if n, ok := toFloat(value); ok {
			return f.formatNumber(n, spec)
		}
		return Stringify(value)
	}

	if isDatePattern(spec) {
		if t, err := parseDate(value); err == nil {
			return t.Format(translateDateFormat(spec))
		}
	}

	GetLogger().WithField("format", spec).Trace("unrecognized format, using default rendering")
	return Stringify(value)
}

// formatNumber applies a numeric pattern: digits after the dot set the
// precision, a comma turns on locale grouping.
func (f *Formatter) formatNumber(n float64, spec string) string {
	decimals := 0
	if dot := strings.IndexByte(spec, '.'); dot >= 0 {
		decimals = len(spec) - dot - 1
	}

	if !strings.Contains(spec, ",") {
		return strconv.FormatFloat(n, 'f', decimals, 64)
	}

	p := message.NewPrinter(f.locale)
	return p.Sprint(number.Decimal(n, number.MinFractionDigits(decimals), number.MaxFractionDigits(decimals)))
}

var builtinFormats = map[string]FormatFunc{
	"upper": func(v interface{}, tag language.Tag) (string, bool) {
		return cases.Upper(tag).String(Stringify(v)), true
	},
	"lower": func(v interface{}, tag language.Tag) (string, bool) {
		return cases.Lower(tag).String(Stringify(v)), true
	},
	"title": func(v interface{}, tag language.Tag) (string, bool) {
		return cases.Title(tag).String(Stringify(v)), true
	},
	"trim": func(v interface{}, _ language.Tag) (string, bool) {
		return strings.TrimSpace(Stringify(v)), true
	},
	"int": func(v interface{}, _ language.Tag) (string, bool) {
		n, ok := toFloat(v)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(int64(math.Round(n)), 10), true
	},
	"number": func(v interface{}, tag language.Tag) (string, bool) {
		n, ok := toFloat(v)
		if !ok {
			return "", false
		}
		p := message.NewPrinter(tag)
		return p.Sprint(number.Decimal(n, number.MinFractionDigits(2), number.MaxFractionDigits(2))), true
	},
	"percent": func(v interface{}, _ language.Tag) (string, bool) {
		n, ok := toFloat(v)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(n*100, 'f', -1, 64) + "%", true
	},
	"yesno": func(v interface{}, _ language.Tag) (string, bool) {
		if isTruthy(v) {
			return "yes", true
		}
		return "no", true
	},
}

// Stringify is the default rendering of a value. Sequences and maps are
// summarized rather than expanded.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', 15, 64)
	case time.Time:
		return formatTime(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatTime(*v)
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return ""
		}
		return v.String()
	case error:
		return v.Error()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', 15, 64)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[list:%d]", rv.Len())
	case reflect.Map:
		return fmt.Sprintf("[map:%d]", rv.Len())
	}
	return fmt.Sprintf("%v", value)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func deref(value interface{}) interface{} {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
