// Package rewrite turns direct swup:contentReplaced listener registrations
// into guarded calls to a shared dispatch hook.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultRegister = "window.addEventListener"
	DefaultEvent    = "swup:contentReplaced"
	DefaultHook     = "window.onSwupContentReplaced"
)

// callbackPattern accepts an arrow function whose body has no closing brace,
// or a bare function name. A body with a nested block either fails to match
// or is cut short at the nested block's closing brace.
const callbackPattern = `\([^)]*\)` + space + `=>` + space + `\{[^}]+\}|[a-zA-Z_][a-zA-Z0-9_]*`

// space matches any run of Unicode white space, including \v, the
// separators \x1c-\x1f, NEL and NBSP. RE2's \s is ASCII-only.
const space = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]*`

// Rewriter holds the compiled listener pattern.
type Rewriter struct {
	re       *regexp.Regexp
	register string
	event    string
	hook     string
	tidy     bool
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithRegister sets the registration call to look for.
func WithRegister(call string) Option {
	return func(r *Rewriter) { r.register = call }
}

// WithEvent sets the event name matched inside the single-quoted literal.
func WithEvent(event string) Option {
	return func(r *Rewriter) { r.event = event }
}

// WithHook sets the dispatch hook expression the rewritten code checks for
// and calls.
func WithHook(hook string) Option {
	return func(r *Rewriter) { r.hook = hook }
}

// WithTidyIndent writes line breaks captured before a registration once,
// ahead of the replacement, and indents the generated lines with only the
// whitespace after the last break. By default the whole capture is repeated
// in front of every generated line.
func WithTidyIndent(tidy bool) Option {
	return func(r *Rewriter) { r.tidy = tidy }
}

// New builds a Rewriter. Without options it targets
// window.addEventListener('swup:contentReplaced', cb) and dispatches to
// window.onSwupContentReplaced.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		register: DefaultRegister,
		event:    DefaultEvent,
		hook:     DefaultHook,
	}
	for _, opt := range opts {
		opt(r)
	}
	// Pattern: <ws>window.addEventListener('swup:contentReplaced', <cb>);
	r.re = regexp.MustCompile(`(` + space + `)` + regexp.QuoteMeta(r.register) +
		`\('` + regexp.QuoteMeta(r.event) + `',` + space + `(` + callbackPattern + `)\);`)
	return r
}

// Event returns the event name the Rewriter matches.
func (r *Rewriter) Event() string { return r.event }

// Hook returns the dispatch hook expression.
func (r *Rewriter) Hook() string { return r.hook }

// Pattern returns the regular expression used to find listeners.
func (r *Rewriter) Pattern() string { return r.re.String() }

// Replacement describes one rewritten listener.
type Replacement struct {
	Key      string // <section>_<n>
	Callback string // Original callback expression, verbatim
	Indent   string
	Offset   int // Byte offset of the original statement in the input
	// Unbalanced is set when the callback has more { than }: the match
	// stopped at a nested block's closing brace and the output is likely
	// broken.
	Unbalanced bool
}

// Result is the outcome of rewriting one document.
type Result struct {
	Content      string
	Changed      bool
	Replacements []Replacement
	// Residual counts event name occurrences left in Content. A non-zero
	// value after a rewrite means some registrations did not match, usually
	// because their callback contains a nested block.
	Residual int
}

// Unbalanced returns the keys of replacements whose callback was cut short
// at a nested closing brace.
func (res Result) Unbalanced() []string {
	var keys []string
	for _, rep := range res.Replacements {
		if rep.Unbalanced {
			keys = append(keys, rep.Key)
		}
	}
	return keys
}

// Keys returns the generated dispatch keys in source order.
func (res Result) Keys() []string {
	keys := make([]string, len(res.Replacements))
	for i, rep := range res.Replacements {
		keys[i] = rep.Key
	}
	return keys
}

// Rewrite replaces every matching registration in content. Keys are
// sectionKey_1, sectionKey_2, ... in order of appearance.
func (r *Rewriter) Rewrite(content, sectionKey string) Result {
	matches := r.re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return Result{Content: content, Residual: strings.Count(content, r.event)}
	}

	var res Result
	var b strings.Builder
	b.Grow(len(content) + len(matches)*(2*len(r.hook)+32))

	last := 0
	for i, m := range matches {
		ws := content[m[2]:m[3]]
		breaks, lineIndent := splitIndent(ws)
		lead, indent := "", ws
		if r.tidy {
			lead, indent = breaks, lineIndent
		}
		callback := content[m[4]:m[5]]
		key := fmt.Sprintf("%s_%d", sectionKey, i+1)

		b.WriteString(content[last:m[0]])
		b.WriteString(lead)
		fmt.Fprintf(&b, "%sif (%s) {\n%s  %s('%s', %s);\n%s}",
			indent, r.hook, indent, r.hook, key, callback, indent)
		last = m[1]

		res.Replacements = append(res.Replacements, Replacement{
			Key:        key,
			Callback:   callback,
			Indent:     indent,
			Offset:     m[2] + len(breaks),
			Unbalanced: strings.Count(callback, "{") != strings.Count(callback, "}"),
		})
	}
	b.WriteString(content[last:])

	res.Content = b.String()
	res.Changed = res.Content != content
	res.Residual = strings.Count(res.Content, r.event)
	return res
}

// splitIndent separates captured leading whitespace into the line breaks
// that precede the statement and the indentation of the statement's line.
func splitIndent(ws string) (breaks, indent string) {
	i := strings.LastIndexByte(ws, '\n')
	if i < 0 {
		return "", ws
	}
	return ws[:i+1], ws[i+1:]
}
