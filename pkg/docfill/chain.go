package docfill

import (
	"sort"
)

// Processor recognizes one placeholder syntax and renders it. body is the
// text between "${" and "}" for simple forms, or the whole block text
// ("${if:x}...${/if}") for block forms.
type Processor interface {
	Supports(body string) bool
	Process(body string, data Data) string
	// Priority orders processors; lower runs first.
	Priority() int
}

// Renderer renders a span of template text. Block processors use it to fill
// their inner content.
type Renderer interface {
	ProcessText(text string, data Data) string
}

// RendererAware is implemented by processors that need to render nested
// content. NewChain binds them to the chain being built.
type RendererAware interface {
	SetRenderer(r Renderer)
}

// LoggerAware is implemented by processors that write diagnostics. NewChain
// binds them to the chain's logger when one is set.
type LoggerAware interface {
	SetLogger(l *Logger)
}

// processorLog is embedded by processors that log. Without a bound logger it
// falls back to the global one.
type processorLog struct {
	log *Logger
}

func (p *processorLog) SetLogger(l *Logger) { p.log = l }

func (p *processorLog) logger() *Logger {
	if p.log != nil {
		return p.log
	}
	return GetLogger()
}

const (
	PriorityConditional = 10
	PriorityLoop        = 20
	PriorityMath        = 30
	PriorityRowMarker   = 40
	PrioritySimple      = 1000
)

// Chain dispatches placeholders to the first processor that supports them.
// It is immutable once built and safe for concurrent use.
type Chain struct {
	processors     []Processor
	fixSmartQuotes bool
	log            *Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithSmartQuoteFix enables or disables normalizing curly quotes in
// placeholder expressions.
func WithSmartQuoteFix(enabled bool) ChainOption {
	return func(c *Chain) {
		c.fixSmartQuotes = enabled
	}
}

// WithChainLogger sets the logger used for scan and dispatch diagnostics.
func WithChainLogger(logger *Logger) ChainOption {
	return func(c *Chain) {
		c.log = logger
	}
}

// WithProcessors adds processors to the chain.
func WithProcessors(processors ...Processor) ChainOption {
	return func(c *Chain) {
		c.processors = append(c.processors, processors...)
	}
}

// NewChain builds a chain from options, sorting processors by priority.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{fixSmartQuotes: true}
	for _, opt := range opts {
		opt(c)
	}

	sort.SliceStable(c.processors, func(i, j int) bool {
		return c.processors[i].Priority() < c.processors[j].Priority()
	})

	for _, p := range c.processors {
		if aware, ok := p.(RendererAware); ok {
			aware.SetRenderer(c)
		}
		if aware, ok := p.(LoggerAware); ok && c.log != nil {
			aware.SetLogger(c.log)
		}
	}
	return c
}

// NewDefaultChain builds the standard chain: conditional, loop, math, row
// marker and simple substitution.
func NewDefaultChain(resolver *Resolver, formatter *Formatter, opts ...ChainOption) *Chain {
	processors := WithProcessors(
		NewConditionalProcessor(resolver),
		NewLoopProcessor(resolver),
		NewMathProcessor(resolver),
		NewRowMarkerProcessor(),
		NewSimpleProcessor(resolver, formatter),
	)
	return NewChain(append([]ChainOption{processors}, opts...)...)
}

// Processors returns the processors in dispatch order.
func (c *Chain) Processors() []Processor {
	return append([]Processor(nil), c.processors...)
}

// Dispatch renders body with the first supporting processor. ok is false when
// no processor claims it.
func (c *Chain) Dispatch(body string, data Data) (string, bool) {
	for _, p := range c.processors {
		if p.Supports(body) {
			return p.Process(body, data), true
		}
	}
	return "", false
}

func (c *Chain) logger() *Logger {
	if c.log != nil {
		return c.log
	}
	return GetLogger()
}
