package layers

import "strings"

// Vars are the named placeholders resolvable inside layer values.
type Vars struct {
	Version      string
	Distribution string
	Variant      string
	// AddonsVersion is only set for variants bundling the companion
	// add-on package; its placeholder is left untouched otherwise.
	AddonsVersion string
}

// Substitute replaces {{VERSION}}, {{DISTRIBUTION}}, {{VARIANT}} and
// {{ADDONS_VERSION}} in every string value of the tree, returning a new tree.
// Keys are never substituted. The operation is idempotent: a tree without
// remaining placeholders passes through unchanged.
func Substitute(tree Tree, vars Vars) Tree {
	replacements := []string{
		"{{VERSION}}", vars.Version,
		"{{DISTRIBUTION}}", vars.Distribution,
		"{{VARIANT}}", vars.Variant,
	}
	if vars.AddonsVersion != "" {
		replacements = append(replacements, "{{ADDONS_VERSION}}", vars.AddonsVersion)
	}
	replacer := strings.NewReplacer(replacements...)
	return substituteValue(tree, replacer).(Tree)
}

func substituteValue(value interface{}, replacer *strings.Replacer) interface{} {
	switch v := value.(type) {
	case string:
		return replacer.Replace(v)
	case Tree:
		out := make(Tree, len(v))
		for key, item := range v {
			out[key] = substituteValue(item, replacer)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = substituteValue(item, replacer)
		}
		return out
	default:
		return value
	}
}
