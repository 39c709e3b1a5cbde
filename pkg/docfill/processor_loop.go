package docfill

import (
	"strings"
)

// LoopProcessor renders ${foreach:path}content${/foreach} once per element of
// the sequence at path. Each iteration sees the item, its index, isFirst,
// isLast and the item's own fields. Nested blocks in content are rendered per
// iteration.
type LoopProcessor struct {
	processorLog
	resolver *Resolver
	renderer Renderer
}

func NewLoopProcessor(resolver *Resolver) *LoopProcessor {
	return &LoopProcessor{resolver: resolver}
}

func (p *LoopProcessor) SetRenderer(r Renderer) { p.renderer = r }

func (p *LoopProcessor) Priority() int { return PriorityLoop }

func (p *LoopProcessor) Supports(body string) bool {
	_, _, ok := splitBlock(body, PrefixForeach, CloseForeach)
	return ok
}

func (p *LoopProcessor) Process(body string, data Data) string {
	path, content, ok := splitBlock(body, PrefixForeach, CloseForeach)
	if !ok {
		return ""
	}

	value, _ := p.resolver.Resolve(data, path)
	items, ok := toSequence(value)
	if !ok {
		p.logger().WithField("path", path).Debug("loop source is not a sequence, rendering nothing")
		return ""
	}

	var sb strings.Builder
	for i, item := range items {
		iteration := IterationData(data, item, i, len(items))
		if p.renderer == nil {
			sb.WriteString(content)
			continue
		}
		sb.WriteString(p.renderer.ProcessText(content, iteration))
	}
	return sb.String()
}
