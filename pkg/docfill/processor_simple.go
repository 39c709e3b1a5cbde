package docfill

import (
	"strings"
)

// SimpleProcessor substitutes ${key} and ${key:format}. It is the catch-all
// and runs last.
type SimpleProcessor struct {
	resolver  *Resolver
	formatter *Formatter
}

// NewSimpleProcessor creates a substitution processor.
func NewSimpleProcessor(resolver *Resolver, formatter *Formatter) *SimpleProcessor {
	return &SimpleProcessor{resolver: resolver, formatter: formatter}
}

func (p *SimpleProcessor) Priority() int { return PrioritySimple }

// Supports rejects reserved prefixes, block closers and block text so that a
// malformed block fragment is never read as a key.
func (p *SimpleProcessor) Supports(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.HasPrefix(trimmed, "${") {
		return false
	}
	for _, prefix := range []string{PrefixIf, PrefixForeach, PrefixMath, PrefixList} {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	return trimmed != CloseIf && trimmed != CloseForeach
}

func (p *SimpleProcessor) Process(body string, data Data) string {
	key, spec, _ := strings.Cut(strings.TrimSpace(body), ":")
	value, _ := p.resolver.Resolve(data, key)
	return p.formatter.Format(value, spec)
}
