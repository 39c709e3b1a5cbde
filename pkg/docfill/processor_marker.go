package docfill

import "strings"

// RowMarkerProcessor consumes ${list:key} markers that reach text processing,
// e.g. in a table whose list did not resolve to a sequence.
type RowMarkerProcessor struct{}

func NewRowMarkerProcessor() *RowMarkerProcessor {
	return &RowMarkerProcessor{}
}

func (p *RowMarkerProcessor) Priority() int { return PriorityRowMarker }

func (p *RowMarkerProcessor) Supports(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), PrefixList)
}

func (p *RowMarkerProcessor) Process(string, Data) string {
	return ""
}
