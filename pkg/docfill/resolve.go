package docfill

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fielder is implemented by host objects that expose named values themselves.
type Fielder interface {
	Field(name string) (interface{}, bool)
}

// Accessor reads a named value out of an object. found is false when the
// accessor does not apply to obj or obj has no such name.
type Accessor interface {
	Access(obj interface{}, name string) (value interface{}, found bool)
}

// AccessorFunc adapts a function to the Accessor interface.
type AccessorFunc func(obj interface{}, name string) (interface{}, bool)

func (f AccessorFunc) Access(obj interface{}, name string) (interface{}, bool) {
	return f(obj, name)
}

var (
	// FielderAccessor delegates to objects implementing Fielder.
	FielderAccessor Accessor = AccessorFunc(accessFielder)
	// MapAccessor looks names up in maps with string-kind keys.
	MapAccessor Accessor = AccessorFunc(accessMap)
	// FieldAccessor reads exported struct fields by name, capitalized name or json tag.
	FieldAccessor Accessor = AccessorFunc(accessStructField)
	// GetterAccessor calls zero-argument GetName, IsName or Name methods.
	GetterAccessor Accessor = AccessorFunc(accessGetter)
)

// Resolver walks key paths such as "order.lines[0].price" over a data context.
type Resolver struct {
	accessors []Accessor
}

// NewResolver creates a resolver that tries accessors in order.
func NewResolver(accessors ...Accessor) *Resolver {
	return &Resolver{accessors: append([]Accessor(nil), accessors...)}
}

// DefaultResolver returns a resolver with the Fielder, map, struct field and
// getter accessors.
func DefaultResolver() *Resolver {
	return NewResolver(FielderAccessor, MapAccessor, FieldAccessor, GetterAccessor)
}

// Resolve returns the value at path. It never fails: a missing key, a bad
// index or an inaccessible field yields (nil, false).
func (r *Resolver) Resolve(data interface{}, path string) (value interface{}, found bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			GetLogger().WithField("path", path).Trace("resolution failed: %v", RecoverError(rec))
			value, found = nil, false
		}
	}()

	current := data
	for _, segment := range splitKeyPath(path) {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			GetLogger().WithField("path", path).Trace("malformed segment %q", segment)
			return nil, false
		}

		if name != "" {
			current, found = r.Field(current, name)
			if !found {
				GetLogger().WithField("path", path).Trace("no value for %q", name)
				return nil, false
			}
		}

		for _, index := range indexes {
			current, found = r.index(current, index)
			if !found {
				GetLogger().WithField("path", path).Trace("index [%s] not found", index)
				return nil, false
			}
		}
	}

	return current, true
}

// Field looks name up on obj through the accessor chain.
func (r *Resolver) Field(obj interface{}, name string) (interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	for _, accessor := range r.accessors {
		if value, ok := accessor.Access(obj, name); ok {
			return value, true
		}
	}
	return nil, false
}

// index applies one bracket segment: an integer indexes a sequence (negative
// values count from the end), a quoted or bare word is a key.
func (r *Resolver) index(obj interface{}, index string) (interface{}, bool) {
	index = strings.TrimSpace(index)
	if n, err := strconv.Atoi(index); err == nil {
		return indexSequence(obj, n)
	}
	return r.Field(obj, strings.Trim(index, `'"`))
}

// splitKeyPath splits on dots outside brackets.
func splitKeyPath(path string) []string {
	var (
		segments []string
		depth    int
		start    int
	)
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				segments = append(segments, strings.TrimSpace(path[start:i]))
				start = i + 1
			}
		}
	}
	return append(segments, strings.TrimSpace(path[start:]))
}

// parseSegment splits "name[1][2]" into its name and bracket contents.
func parseSegment(segment string) (string, []string, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, nil, segment != ""
	}

	name := strings.TrimSpace(segment[:open])
	var indexes []string
	rest := segment[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		closeIdx := strings.IndexByte(rest, ']')
		if closeIdx < 0 {
			return "", nil, false
		}
		indexes = append(indexes, rest[1:closeIdx])
		rest = strings.TrimSpace(rest[closeIdx+1:])
	}
	return name, indexes, true
}

func indexSequence(obj interface{}, index int) (interface{}, bool) {
	rv := indirect(reflect.ValueOf(obj))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, false
	}
	if index < 0 {
		index = rv.Len() + index
	}
	if index < 0 || index >= rv.Len() {
		return nil, false
	}
	return rv.Index(index).Interface(), true
}

func accessFielder(obj interface{}, name string) (interface{}, bool) {
	if f, ok := obj.(Fielder); ok {
		return f.Field(name)
	}
	return nil, false
}

func accessMap(obj interface{}, name string) (interface{}, bool) {
	switch m := obj.(type) {
	case Data:
		v, ok := m[name]
		return v, ok
	case map[string]interface{}:
		v, ok := m[name]
		return v, ok
	}

	rv := indirect(reflect.ValueOf(obj))
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func accessStructField(obj interface{}, name string) (interface{}, bool) {
	rv := indirect(reflect.ValueOf(obj))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, false
	}

	rt := rv.Type()
	for _, candidate := range []string{name, capitalize(name)} {
		if sf, ok := rt.FieldByName(candidate); ok && sf.IsExported() {
			return rv.FieldByIndex(sf.Index).Interface(), true
		}
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" && tag == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func accessGetter(obj interface{}, name string) (interface{}, bool) {
	if target := indirect(reflect.ValueOf(obj)); !target.IsValid() || target.Kind() != reflect.Struct {
		return nil, false
	}

	rv := reflect.ValueOf(obj)

	// Expose pointer-receiver methods on values
	if rv.Kind() != reflect.Ptr && rv.Kind() != reflect.Interface {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		rv = ptr
	}

	upper := capitalize(name)
	for _, methodName := range []string{"Get" + upper, "Is" + upper, upper} {
		method := rv.MethodByName(methodName)
		if !method.IsValid() {
			continue
		}
		if value, ok := callGetter(method); ok {
			return value, true
		}
	}
	return nil, false
}

// callGetter calls a zero-argument method returning a value, optionally
// followed by an error or an ok flag.
func callGetter(method reflect.Value) (interface{}, bool) {
	mt := method.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 {
		return nil, false
	}

	out := method.Call(nil)
	if len(out) == 2 {
		switch second := out[1].Interface().(type) {
		case error:
			return nil, false
		case bool:
			if !second {
				return nil, false
			}
		}
	}
	return out[0].Interface(), true
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
