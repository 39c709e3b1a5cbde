package docfill

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Data is the context a template is filled from. The engine never modifies
// it; loop and row contexts are copies.
type Data map[string]interface{}

// Clone returns a shallow copy of d.
func (d Data) Clone() Data {
	out := make(Data, len(d)+4)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Iteration binding names available inside loops and dynamic rows.
const (
	BindingItem    = "item"
	BindingIndex   = "index"
	BindingIsFirst = "isFirst"
	BindingIsLast  = "isLast"
)

// IterationData builds the context for one loop iteration or generated row:
// a copy of parent, the item's own fields, then the item/index/isFirst/isLast
// bindings.
func IterationData(parent Data, item interface{}, index, count int) Data {
	data := parent.Clone()
	for k, v := range FlattenFields(item) {
		data[k] = v
	}
	data[BindingItem] = item
	data[BindingIndex] = index
	data[BindingIsFirst] = index == 0
	data[BindingIsLast] = index == count-1
	return data
}

// FlattenFields returns the named values of a map or struct item. Scalars,
// strings, times and sequences have no fields.
func FlattenFields(item interface{}) map[string]interface{} {
	switch v := item.(type) {
	case nil, string, time.Time, *time.Time:
		return nil
	case Data:
		return v
	case map[string]interface{}:
		return v
	}

	rv := indirect(reflect.ValueOf(item))
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		fields := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields[iter.Key().String()] = iter.Value().Interface()
		}
		return fields
	case reflect.Struct:
		rt := rv.Type()
		fields := make(map[string]interface{}, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			value := rv.Field(i).Interface()
			fields[sf.Name] = value
			if tag := strings.Split(sf.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				fields[tag] = value
			}
		}
		return fields
	}
	return nil
}

// toSequence returns the elements of a slice or array. Strings and byte
// slices are not sequences.
func toSequence(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []interface{}:
		return s, true
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

// isTruthy reports the truthiness of a resolved value: nil is false, bools are
// themselves, numbers are nonzero, strings and sequences are non-empty, and
// any other value is true.
func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return isTruthy(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

// toFloat converts numbers and numeric strings to float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
