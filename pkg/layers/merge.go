package layers

import "fmt"

// Tree is a partial configuration layer: a nested string-keyed mapping of
// scalars, lists, and sub-mappings, as produced by yaml.v3.
type Tree = map[string]interface{}

// Merge combines layers in precedence order (later layers win) into a fresh
// tree. The inputs are never mutated. Merge policy:
//
//   - scalar values: later layer overwrites
//   - list values: concatenated in layer order, deduplicated keeping the
//     first occurrence (package lists are order sensitive, so no sorting)
//   - mapping values: merged recursively with the same rules
//
// Only the precedence order of layers matters; their in-memory declaration
// order within each tree does not affect the result.
func Merge(trees ...Tree) Tree {
	out := Tree{}
	for _, t := range trees {
		mergeInto(out, t)
	}
	return out
}

func mergeInto(dst, src Tree) {
	for key, value := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = deepCopy(value)
			continue
		}

		switch sv := value.(type) {
		case Tree:
			if dv, ok := existing.(Tree); ok {
				mergeInto(dv, sv)
				continue
			}
			dst[key] = deepCopy(value)
		case []interface{}:
			if dv, ok := existing.([]interface{}); ok {
				dst[key] = appendDedup(dv, sv)
				continue
			}
			dst[key] = deepCopy(value)
		default:
			dst[key] = value
		}
	}
}

// appendDedup concatenates two lists, keeping the first occurrence of each
// element. Ordering is stable: this models package lists where install order
// can matter.
func appendDedup(dst, src []interface{}) []interface{} {
	seen := make(map[string]struct{}, len(dst)+len(src))
	out := make([]interface{}, 0, len(dst)+len(src))
	for _, lst := range [][]interface{}{dst, src} {
		for _, item := range lst {
			key := fmt.Sprintf("%v", item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, deepCopy(item))
		}
	}
	return out
}

func deepCopy(value interface{}) interface{} {
	switch v := value.(type) {
	case Tree:
		out := make(Tree, len(v))
		for key, item := range v {
			out[key] = deepCopy(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return value
	}
}
