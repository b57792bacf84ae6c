package contextquery

import "path/filepath"

// Rule matches a file path against a glob and, when it matches, adjusts
// the generated context query: injecting extra terms, restricting which
// trees the resulting query runs against, or forcing specific chunk ids
// into the result set regardless of ranking.
type Rule struct {
	Glob           string
	InjectTerms    []string
	RestrictTrees  []string
	ForceIncludeID []string
}

// Matches reports whether path satisfies the rule's glob. The glob is tried
// against the full path and then against its base name, so a bare pattern
// such as "*.md" matches a file at any directory depth.
func (r Rule) Matches(path string) bool {
	if ok, err := filepath.Match(r.Glob, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(r.Glob, filepath.Base(path))
	return err == nil && ok
}

// MergeResult is the net effect of applying a set of rules to one file.
type MergeResult struct {
	ExtraTerms     []string
	RestrictTrees  []string
	ForceIncludeID []string
}

// applyRules unions every matching rule's extra terms and force-includes,
// and concatenates their tree lists in rule order. The tree lists are not
// intersected: a tree named by any matching rule stays in RestrictTrees.
// The caller treats a non-empty RestrictTrees as a restriction.
func applyRules(path string, rules []Rule) MergeResult {
	var out MergeResult
	for _, r := range rules {
		if !r.Matches(path) {
			continue
		}
		out.ExtraTerms = append(out.ExtraTerms, r.InjectTerms...)
		out.ForceIncludeID = append(out.ForceIncludeID, r.ForceIncludeID...)
		out.RestrictTrees = append(out.RestrictTrees, r.RestrictTrees...)
	}
	return out
}
