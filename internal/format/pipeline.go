package format

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
)

// Formatter rewrites source text for one language.
type Formatter interface {
	Name() string
	Format(ctx context.Context, src string) (string, error)
}

// Outcome is the result of Apply. It never represents a request failure.
type Outcome struct {
	Applied bool
	Message string
	Text    string
}

const degradedMessage = "Formatting could not be applied, showing raw output."

// Options selects the external tools used by the default pipeline.
type Options struct {
	Prettier     string
	SQLFormatter string
}

// Pipeline maps language tags to formatters.
type Pipeline struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// New returns an empty pipeline.
func New() *Pipeline {
	return &Pipeline{formatters: make(map[string]Formatter)}
}

// Default returns a pipeline with every built-in formatter registered.
// Languages without a formatter (python, java, csharp, rust) are left
// unmapped.
func Default(opts Options) *Pipeline {
	prettier := opts.Prettier
	if prettier == "" {
		prettier = "prettier"
	}
	sqlFormatter := opts.SQLFormatter
	if sqlFormatter == "" {
		sqlFormatter = "sql-formatter"
	}

	p := New()
	p.Register("go", GoSource{})
	p.Register("json", JSON{})
	p.Register("yaml", YAML{})
	p.Register("javascript", Prettier(prettier, "babel"))
	p.Register("typescript", Prettier(prettier, "typescript"))
	p.Register("html", Prettier(prettier, "html"))
	p.Register("css", Prettier(prettier, "css"))
	p.Register("sql", &Command{Label: "sql-formatter", Path: sqlFormatter, Args: []string{"--language", "sql"}})
	return p
}

// Register maps a language tag to f, replacing any previous mapping.
func (p *Pipeline) Register(language string, f Formatter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formatters[Canonical(language)] = f
}

// Lookup returns the formatter for language, if one is mapped.
func (p *Pipeline) Lookup(language string) (Formatter, bool) {
	if p == nil {
		return nil, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.formatters[Canonical(language)]
	return f, ok
}

// Languages returns the mapped language tags.
func (p *Pipeline) Languages() []string {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.formatters))
	for lang := range p.formatters {
		out = append(out, lang)
	}
	return out
}

// Apply formats the code blocks of text written in language. Unmapped
// languages return the text untouched with an empty message. On any
// formatter failure the original text is returned.
func (p *Pipeline) Apply(ctx context.Context, text, language string) (out Outcome) {
	f, ok := p.Lookup(language)
	if !ok {
		return Outcome{Text: text}
	}

	log := clog.FromContext(ctx).With("language", language).With("formatter", f.Name())
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("formatter panicked: %v", r)
			out = Outcome{Text: text, Message: degradedMessage}
		}
	}()

	formatted, err := rewriteBlocks(text, Aliases(language), func(body string) (string, error) {
		return f.Format(ctx, body)
	})
	if err != nil {
		log.Warnf("formatting review failed: %v", err)
		return Outcome{Text: text, Message: degradedMessage}
	}
	return Outcome{
		Applied: true,
		Message: fmt.Sprintf("Review code blocks formatted with %s.", f.Name()),
		Text:    formatted,
	}
}

var aliases = map[string][]string{
	"javascript": {"javascript", "js", "jsx", "mjs", "cjs"},
	"typescript": {"typescript", "ts", "tsx"},
	"go":         {"go", "golang"},
	"yaml":       {"yaml", "yml"},
	"html":       {"html", "htm"},
	"csharp":     {"csharp", "cs", "c#"},
	"python":     {"python", "py"},
	"rust":       {"rust", "rs"},
}

// Canonical maps an alias such as "ts" or "yml" to its language tag.
func Canonical(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	for tag, names := range aliases {
		for _, n := range names {
			if n == l {
				return tag
			}
		}
	}
	return l
}

// Aliases returns every info-string name that denotes language.
func Aliases(language string) []string {
	tag := Canonical(language)
	if names, ok := aliases[tag]; ok {
		return names
	}
	return []string{tag}
}
