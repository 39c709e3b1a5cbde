package docfill

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// ConditionalProcessor renders ${if:cond}content${/if}: the content when the
// condition holds, nothing otherwise.
//
// Conditions are split on && first, then ||, then a leading !, then == or !=;
// anything else is a truthiness test. Operands are quoted strings, integers,
// floats, true, false, null or key paths. A condition that fails to evaluate
// is false.
type ConditionalProcessor struct {
	processorLog
	resolver *Resolver
	renderer Renderer
}

func NewConditionalProcessor(resolver *Resolver) *ConditionalProcessor {
	return &ConditionalProcessor{resolver: resolver}
}

func (p *ConditionalProcessor) SetRenderer(r Renderer) { p.renderer = r }

func (p *ConditionalProcessor) Priority() int { return PriorityConditional }

func (p *ConditionalProcessor) Supports(body string) bool {
	_, _, ok := splitBlock(body, PrefixIf, CloseIf)
	return ok
}

func (p *ConditionalProcessor) Process(body string, data Data) string {
	cond, content, ok := splitBlock(body, PrefixIf, CloseIf)
	if !ok || !p.Evaluate(cond, data) {
		return ""
	}
	if p.renderer == nil {
		return content
	}
	return p.renderer.ProcessText(content, data)
}

// Evaluate reports whether cond holds against data.
func (p *ConditionalProcessor) Evaluate(cond string, data Data) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().WithField("condition", cond).Debug("%v", NewEvaluationError(cond, RecoverError(r)))
			result = false
		}
	}()

	result = p.evaluate(strings.TrimSpace(cond), data)
	p.logger().DebugExpression(cond, result)
	return result
}

func (p *ConditionalProcessor) evaluate(cond string, data Data) bool {
	if strings.Contains(cond, "&&") {
		for _, part := range strings.Split(cond, "&&") {
			if !p.evaluate(strings.TrimSpace(part), data) {
				return false
			}
		}
		return true
	}

	if strings.Contains(cond, "||") {
		for _, part := range strings.Split(cond, "||") {
			if p.evaluate(strings.TrimSpace(part), data) {
				return true
			}
		}
		return false
	}

	if strings.HasPrefix(cond, "!") && !strings.HasPrefix(cond, "!=") {
		return !p.evaluate(strings.TrimSpace(cond[1:]), data)
	}

	if left, right, found := strings.Cut(cond, "!="); found {
		return !valuesEqual(p.operand(left, data), p.operand(right, data))
	}
	if left, right, found := strings.Cut(cond, "=="); found {
		return valuesEqual(p.operand(left, data), p.operand(right, data))
	}

	return isTruthy(p.operand(cond, data))
}

// operand parses a literal or resolves a key path. Absent keys are nil.
func (p *ConditionalProcessor) operand(s string, data Data) interface{} {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "nil":
		return nil
	}
	value, _ := p.resolver.Resolve(data, s)
	return value
}

// valuesEqual compares by value: numbers numerically, nil with nil, a string
// with the string form of the other side, anything else deeply.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return isNil(a) && isNil(b)
	}

	if isNumber(a) && isNumber(b) {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa == fb
	}

	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	switch {
	case aIsString && !bIsString:
		return as == Stringify(b)
	case bIsString && !aIsString:
		return Stringify(a) == bs
	}

	return reflect.DeepEqual(a, b)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isNumber(v interface{}) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
