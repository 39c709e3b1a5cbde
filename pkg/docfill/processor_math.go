package docfill

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// MathProcessor evaluates ${math:expression}.
//
// Key paths in the expression are replaced by their numeric values. Operands
// (numbers, parenthesized groups, function calls) are evaluated on their own
// and then folded strictly left to right, so 2+3*4 is 20. A whole result is
// written without decimals, anything else with two. Failures render NaN.
type MathProcessor struct {
	processorLog
	resolver *Resolver
}

func NewMathProcessor(resolver *Resolver) *MathProcessor {
	return &MathProcessor{resolver: resolver}
}

func (p *MathProcessor) Priority() int { return PriorityMath }

func (p *MathProcessor) Supports(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), PrefixMath)
}

func (p *MathProcessor) Process(body string, data Data) string {
	expression := strings.TrimSpace(strings.TrimSpace(body)[len(PrefixMath):])

	result, err := p.Evaluate(expression, data)
	if err != nil {
		p.logger().WithField("expression", expression).Warn("%v", NewEvaluationError(expression, err))
		return "NaN"
	}
	return formatMathResult(result)
}

// Evaluate computes expression against data.
func (p *MathProcessor) Evaluate(expression string, data Data) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()

	tokens, err := lexMath(expression)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty expression")
	}

	operands, operators, err := splitOperands(p.substitute(tokens, data))
	if err != nil {
		return 0, err
	}

	result, err = evalOperand(operands[0])
	if err != nil {
		return 0, err
	}
	for i, op := range operators {
		next, err := evalOperand(operands[i+1])
		if err != nil {
			return 0, err
		}
		switch op {
		case "+":
			result += next
		case "-":
			result -= next
		case "*":
			result *= next
		case "/":
			result /= next
		}
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	p.logger().DebugExpression(expression, result)
	return result, nil
}

type mathTokenKind int

const (
	mathNumber mathTokenKind = iota
	mathIdent
	mathOperator
	mathOpenParen
	mathCloseParen
	mathComma
)

type mathToken struct {
	kind mathTokenKind
	text string
}

// mathFunctions are the functions an expression may call.
var mathFunctions = map[string]func(args ...float64) (float64, error){
	"abs":   unary(math.Abs),
	"sqrt":  unary(math.Sqrt),
	"round": unary(math.Round),
	"ceil":  unary(math.Ceil),
	"floor": unary(math.Floor),
	"pow": func(args ...float64) (float64, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(args[0], args[1]), nil
	},
	"max": variadic(math.Max),
	"min": variadic(math.Min),
}

func unary(fn func(float64) float64) func(args ...float64) (float64, error) {
	return func(args ...float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(args[0]), nil
	}
}

func variadic(fn func(a, b float64) float64) func(args ...float64) (float64, error) {
	return func(args ...float64) (float64, error) {
		if len(args) == 0 {
			return 0, fmt.Errorf("expected at least 1 argument")
		}
		out := args[0]
		for _, arg := range args[1:] {
			out = fn(out, arg)
		}
		return out, nil
	}
}

// mathFunctionPrefix keeps the math functions apart from expr's builtins.
const mathFunctionPrefix = "fn_"

// mathEnv is the expr environment: the math functions under prefixed names.
var mathEnv = func() map[string]interface{} {
	env := make(map[string]interface{}, len(mathFunctions))
	for name, fn := range mathFunctions {
		env[mathFunctionPrefix+name] = func(args ...interface{}) (float64, error) {
			values := make([]float64, len(args))
			for i, arg := range args {
				v, ok := toFloat(arg)
				if !ok {
					return 0, fmt.Errorf("argument %d is not a number: %v", i+1, arg)
				}
				values[i] = v
			}
			return fn(values...)
		}
	}
	return env
}()

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.' || c == '[' || c == ']'
}

func lexMath(s string) ([]mathToken, error) {
	var tokens []mathToken
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			tokens = append(tokens, mathToken{mathNumber, s[i:j]})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			tokens = append(tokens, mathToken{mathIdent, s[i:j]})
			i = j
		case strings.IndexByte("+-*/", c) >= 0:
			tokens = append(tokens, mathToken{mathOperator, string(c)})
			i++
		case c == '(':
			tokens = append(tokens, mathToken{mathOpenParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, mathToken{mathCloseParen, ")"})
			i++
		case c == ',':
			tokens = append(tokens, mathToken{mathComma, ","})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at %d", c, i)
		}
	}
	return tokens, nil
}

// substitute rewrites function names and replaces key paths by their numeric
// values. A key path without a numeric value is left as is.
func (p *MathProcessor) substitute(tokens []mathToken, data Data) []mathToken {
	out := make([]mathToken, len(tokens))
	for i, tok := range tokens {
		out[i] = tok
		if tok.kind != mathIdent {
			continue
		}

		if _, ok := mathFunctions[tok.text]; ok && i+1 < len(tokens) && tokens[i+1].kind == mathOpenParen {
			out[i].text = mathFunctionPrefix + tok.text
			continue
		}

		value, found := p.resolver.Resolve(data, tok.text)
		if !found {
			continue
		}
		n, ok := toFloat(value)
		if !ok {
			continue
		}
		text := strconv.FormatFloat(n, 'f', -1, 64)
		if n < 0 {
			text = "(" + text + ")"
		}
		out[i] = mathToken{mathNumber, text}
	}
	return out
}

// splitOperands splits tokens at top-level binary operators. A sign where an
// operand is expected belongs to that operand.
func splitOperands(tokens []mathToken) ([]string, []string, error) {
	var (
		operands  []string
		operators []string
		current   []string
		depth     int
		expecting = true
	)

	for _, tok := range tokens {
		switch tok.kind {
		case mathOpenParen:
			depth++
			expecting = true
		case mathCloseParen:
			depth--
			if depth < 0 {
				return nil, nil, fmt.Errorf("unbalanced parentheses")
			}
			expecting = false
		case mathComma:
			expecting = true
		case mathOperator:
			if depth == 0 && !expecting {
				if len(current) == 0 {
					return nil, nil, fmt.Errorf("missing operand before %q", tok.text)
				}
				operands = append(operands, strings.Join(current, " "))
				operators = append(operators, tok.text)
				current = nil
				expecting = true
				continue
			}
		default:
			expecting = false
		}
		current = append(current, tok.text)
	}

	if depth != 0 {
		return nil, nil, fmt.Errorf("unbalanced parentheses")
	}
	if len(current) == 0 {
		return nil, nil, fmt.Errorf("missing operand")
	}
	return append(operands, strings.Join(current, " ")), operators, nil
}

func evalOperand(source string) (float64, error) {
	program, err := expr.Compile(source, expr.Env(mathEnv))
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(program, mathEnv)
	if err != nil {
		return 0, err
	}
	n, ok := toFloat(out)
	if !ok {
		return 0, fmt.Errorf("%q is not a number", source)
	}
	return n, nil
}

func formatMathResult(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return fmt.Sprintf("%.2f", n)
}
