// Package defaults applies configured default front matter to pages whose
// path matches a rule pattern.
//
// Rules are ordered. For each page the first rule whose pattern matches the
// whole path is selected and its defaults are merged into the page without
// replacing keys the page already defines. Later rules are never consulted
// for that page, even for keys the first rule does not set.
package defaults

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Rule pairs a path pattern with the front matter applied to matching pages.
type Rule struct {
	Pattern  string         `yaml:"pattern"`
	Defaults map[string]any `yaml:"defaults"`
}

// Rules is an ordered rule list. Order matters: the first match wins.
//
// In YAML it is written either as a mapping from pattern to defaults, which
// keeps document order:
//
//	default_front_matter:
//	  "blog/.*\\.md":
//	    layout: post
//	  ".*":
//	    layout: default
//
// or as a sequence of pattern/defaults entries. Merge keys ("<<: *shared")
// are expanded in the mapping form.
//
// Patterns use Go's RE2 syntax (package regexp) and must match the whole
// path: each is compiled as ^(?:pattern)$, so a top-level alternation such
// as "a|b" matches only "a" or "b". Lookaround and backreferences are not
// supported and fail compilation.
type Rules []Rule

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rules) UnmarshalYAML(value *yaml.Node) error {
	var rules Rules
	switch value.Kind {
	case yaml.MappingNode:
		var err error
		if rules, err = mappingRules(value); err != nil {
			return err
		}
	case yaml.SequenceNode:
		for _, item := range value.Content {
			if item.Kind != yaml.MappingNode {
				return errors.Newf("line %d: rule must be a mapping with pattern and defaults", item.Line)
			}
			var entry struct {
				Pattern  *string   `yaml:"pattern"`
				Defaults yaml.Node `yaml:"defaults"`
			}
			if err := item.Decode(&entry); err != nil {
				return errors.Wrapf(err, "line %d", item.Line)
			}
			if entry.Pattern == nil {
				return errors.Newf("line %d: rule is missing a pattern", item.Line)
			}
			fm, err := decodeDefaults(&entry.Defaults)
			if err != nil {
				return errors.Wrapf(err, "pattern %q", *entry.Pattern)
			}
			rules = append(rules, Rule{Pattern: *entry.Pattern, Defaults: fm})
		}
	case yaml.ScalarNode:
		if value.ShortTag() != "!!null" {
			return errors.Newf("line %d: expected a mapping of patterns, got %s", value.Line, value.ShortTag())
		}
	default:
		return errors.Newf("line %d: expected a mapping of patterns", value.Line)
	}

	if err := rules.checkDuplicates(); err != nil {
		return err
	}
	*r = rules
	return nil
}

// mappingRules reads the pattern-to-defaults form. Merge keys ("<<") splice
// in the pairs of the merged mappings at their position; patterns written
// out in the mapping itself take precedence over merged ones.
func mappingRules(node *yaml.Node) (Rules, error) {
	own := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k := node.Content[i]; k.ShortTag() != "!!merge" {
			own[k.Value] = true
		}
	}

	var rules Rules
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			merged, err := mergedRules(valNode)
			if err != nil {
				return nil, err
			}
			for _, rule := range merged {
				if own[rule.Pattern] {
					continue
				}
				own[rule.Pattern] = true
				rules = append(rules, rule)
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nil, errors.Newf("line %d: pattern must be a string", keyNode.Line)
		}
		fm, err := decodeDefaults(valNode)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", keyNode.Value)
		}
		rules = append(rules, Rule{Pattern: keyNode.Value, Defaults: fm})
	}
	return rules, nil
}

func mergedRules(node *yaml.Node) (Rules, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return mergedRules(node.Alias)
	case yaml.MappingNode:
		return mappingRules(node)
	case yaml.SequenceNode:
		var out Rules
		for _, item := range node.Content {
			r, err := mergedRules(item)
			if err != nil {
				return nil, err
			}
			out = append(out, r...)
		}
		return out, nil
	}
	return nil, errors.Newf("line %d: merge value must be a mapping of patterns", node.Line)
}

// decodeDefaults decodes one rule's front matter. A null value yields nil
// defaults: the rule still matches but sets nothing.
func decodeDefaults(node *yaml.Node) (map[string]any, error) {
	switch {
	case node.Kind == 0:
		return nil, nil
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null":
		return nil, nil
	case node.Kind == yaml.AliasNode:
		return decodeDefaults(node.Alias)
	case node.Kind != yaml.MappingNode:
		return nil, errors.Newf("line %d: defaults must be a mapping, got %s", node.Line, node.ShortTag())
	}
	var fm map[string]any
	if err := node.Decode(&fm); err != nil {
		return nil, errors.Wrapf(err, "line %d", node.Line)
	}
	return fm, nil
}

func (r Rules) checkDuplicates() error {
	seen := make(map[string]struct{}, len(r))
	for _, rule := range r {
		if _, ok := seen[rule.Pattern]; ok {
			return errors.Newf("duplicate pattern %q", rule.Pattern)
		}
		seen[rule.Pattern] = struct{}{}
	}
	return nil
}

// Patterns returns the rule patterns in order.
func (r Rules) Patterns() []string {
	out := make([]string, len(r))
	for i, rule := range r {
		out[i] = rule.Pattern
	}
	return out
}
