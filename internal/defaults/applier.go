package defaults

import (
	"regexp"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/copystructure"
)

// ErrInvalidPattern marks errors caused by a rule pattern that is not a
// valid regular expression.
var ErrInvalidPattern = errors.New("invalid default front matter pattern")

// Page is the part of a page the applier needs.
type Page interface {
	// Path is the page path relative to the content root, slash separated.
	Path() string
	// SetMetadataIfAbsent stores value under key unless key is already
	// present, and reports whether it stored it.
	SetMetadataIfAbsent(key string, value any) bool
}

// Result describes what Apply did to one page.
type Result struct {
	Matched bool
	Pattern string
	// Keys holds the keys that were added, sorted.
	Keys []string
}

type compiledRule struct {
	re   *regexp.Regexp
	rule Rule
}

// Applier is a compiled rule list. It is read-only after Compile and safe
// to reuse across builds.
type Applier struct {
	rules []compiledRule
}

// Compile anchors and compiles every rule pattern. The first invalid pattern
// aborts compilation.
func Compile(rules Rules) (*Applier, error) {
	a := &Applier{rules: make([]compiledRule, 0, len(rules))}
	for i, rule := range rules {
		re, err := regexp.Compile(anchor(rule.Pattern))
		if err != nil {
			return nil, errors.Mark(
				errors.Wrapf(err, "default_front_matter rule %d (%q)", i+1, rule.Pattern),
				ErrInvalidPattern,
			)
		}
		a.rules = append(a.rules, compiledRule{re: re, rule: rule})
	}
	return a, nil
}

// anchor wraps the pattern so it has to match the whole path. The group
// keeps alternations like "a|b" anchored on both ends.
func anchor(pattern string) string {
	return "^(?:" + pattern + ")$"
}

// Len returns the number of compiled rules.
func (a *Applier) Len() int {
	return len(a.rules)
}

// Match returns the first rule whose pattern matches the entire path.
func (a *Applier) Match(path string) (Rule, bool) {
	for _, cr := range a.rules {
		if cr.re.MatchString(path) {
			return cr.rule, true
		}
	}
	return Rule{}, false
}

// Apply merges the defaults of the first matching rule into page. Keys the
// page already has are left alone. Values are deep copied so pages never
// share nested maps or slices with each other or with the rule.
func (a *Applier) Apply(page Page) (Result, error) {
	rule, ok := a.Match(page.Path())
	if !ok {
		return Result{}, nil
	}
	res := Result{Matched: true, Pattern: rule.Pattern}
	for key, value := range rule.Defaults {
		v, err := copyValue(value)
		if err != nil {
			return res, errors.Wrapf(err, "copy default %q for %s", key, page.Path())
		}
		if page.SetMetadataIfAbsent(key, v) {
			res.Keys = append(res.Keys, key)
		}
	}
	sort.Strings(res.Keys)
	return res, nil
}

func copyValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return copystructure.Copy(v)
}

// ApplyAll applies the rules to every page in order and returns how many
// pages matched a rule. The first error stops the pass.
func ApplyAll[P Page](a *Applier, pages []P) (int, error) {
	matched := 0
	for _, p := range pages {
		res, err := a.Apply(p)
		if err != nil {
			return matched, err
		}
		if res.Matched {
			matched++
		}
	}
	return matched, nil
}

// MapPage adapts a path and a metadata map to Page.
type MapPage struct {
	PagePath string
	Data     map[string]any
}

// NewMapPage returns a MapPage, allocating data when nil.
func NewMapPage(path string, data map[string]any) *MapPage {
	if data == nil {
		data = map[string]any{}
	}
	return &MapPage{PagePath: path, Data: data}
}

func (p *MapPage) Path() string { return p.PagePath }

func (p *MapPage) SetMetadataIfAbsent(key string, value any) bool {
	if _, ok := p.Data[key]; ok {
		return false
	}
	if p.Data == nil {
		p.Data = map[string]any{}
	}
	p.Data[key] = value
	return true
}
