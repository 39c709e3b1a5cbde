package docfill

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Engine prepares and renders templates. It is safe for concurrent use.
// Use New() to create a new engine instance.
type Engine struct {
	config    *Config
	resolver  *Resolver
	formatter *Formatter
	chain     *Chain
	tables    *TableFiller
	cache     *TemplateCache
	log       *Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine configuration. The global configuration is used
// otherwise.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithResolver replaces the key path resolver.
func WithResolver(resolver *Resolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// WithFormatter replaces the value formatter.
func WithFormatter(formatter *Formatter) Option {
	return func(e *Engine) {
		e.formatter = formatter
	}
}

// WithChain replaces the processor chain. Resolver and formatter options do
// not affect a chain passed this way.
func WithChain(chain *Chain) Option {
	return func(e *Engine) {
		e.chain = chain
	}
}

// WithLogger sets the logger for template diagnostics.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithCache sets the cache used by PrepareFile.
func WithCache(cache *TemplateCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// New creates an engine. Anything not set by an option is built from the
// configuration.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.config == nil {
		e.config = GetGlobalConfig()
	}
	if e.log == nil {
		e.log = GetLogger()
	}
	if e.resolver == nil {
		e.resolver = DefaultResolver()
	}
	if e.formatter == nil {
		e.formatter = NewFormatter(e.config.Locale)
	}
	if e.chain == nil {
		e.chain = NewDefaultChain(e.resolver, e.formatter,
			WithSmartQuoteFix(e.config.FixSmartQuotes),
			WithChainLogger(e.log),
		)
	}
	if e.cache == nil {
		e.cache = NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: e.config.CacheMaxSize,
			TTL:     e.config.CacheTTL,
		})
	}
	e.tables = NewTableFiller(NewParagraphFiller(e.chain), e.resolver).WithLogger(e.log)

	return e
}

// NewWithConfig validates config and creates an engine using it.
func NewWithConfig(config *Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return New(append([]Option{WithConfig(config)}, opts...)...), nil
}

// Prepare parses a template from r.
func (e *Engine) Prepare(r io.Reader) (*PreparedTemplate, error) {
	return prepare(r, e.tables, e.log)
}

// PrepareFile parses the template at path. Templates are cached by path and
// modification time when caching is enabled.
func (e *Engine) PrepareFile(path string) (*PreparedTemplate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}

	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	key = fmt.Sprintf("%s@%d", key, info.ModTime().UnixNano())

	if e.cache.Enabled() {
		if tmpl, ok := e.cache.Get(key); ok {
			e.log.WithField("path", path).Trace("template cache hit")
			return tmpl, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	defer file.Close()

	tmpl, err := e.Prepare(file)
	if err != nil {
		return nil, WithContext(err, "preparing template", map[string]interface{}{"path": path})
	}

	if e.cache.Enabled() {
		e.cache.Set(key, tmpl)
	}
	return tmpl, nil
}

// ProcessTemplate reads a template from r, fills it with data and writes the
// resulting package to w.
func (e *Engine) ProcessTemplate(r io.Reader, data Data, w io.Writer) error {
	tmpl, err := e.Prepare(r)
	if err != nil {
		return err
	}
	defer tmpl.Close()
	return tmpl.RenderTo(w, data)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Chain returns the engine's processor chain.
func (e *Engine) Chain() *Chain {
	return e.chain
}

// Cache returns the engine's template cache.
func (e *Engine) Cache() *TemplateCache {
	return e.cache
}

var (
	defaultEngine   *Engine
	defaultEngineMu sync.Mutex
)

func getDefaultEngine() *Engine {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New()
	}
	return defaultEngine
}

// ResetDefaultEngine discards the engine behind the package-level functions,
// so that the next call picks up the current global configuration.
func ResetDefaultEngine() {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	defaultEngine = nil
}

// Prepare parses a template with the default engine.
func Prepare(r io.Reader) (*PreparedTemplate, error) {
	return getDefaultEngine().Prepare(r)
}

// PrepareFile parses a template file with the default engine.
func PrepareFile(path string) (*PreparedTemplate, error) {
	return getDefaultEngine().PrepareFile(path)
}

// ProcessTemplate fills the template read from r and writes the result to w,
// using the default engine.
func ProcessTemplate(r io.Reader, data Data, w io.Writer) error {
	return getDefaultEngine().ProcessTemplate(r, data, w)
}
