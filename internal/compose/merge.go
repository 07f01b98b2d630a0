package compose

import "fmt"

// additive list keys, addressed by dotted path from the document root.
// Entries append across layers instead of replacing, de-duplicated by value
// keeping the first occurrence.
func isAdditiveList(path string) bool {
	return path == "runtime.inject"
}

// mergeTree deep-merges src into dst.
// - Maps: merged recursively
// - Slices & scalars: replaced, except additive list keys.
func mergeTree(dst, src map[string]any, path string) {
	if src == nil {
		return
	}
	for k, v := range src {
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		if isAdditiveList(childPath) {
			dst[k] = mergeAdditiveList(dst[k], v)
			continue
		}
		if mv, ok := v.(map[string]any); ok {
			if existing, ok2 := dst[k].(map[string]any); ok2 {
				mergeTree(existing, mv, childPath)
			} else {
				cp := map[string]any{}
				mergeTree(cp, mv, childPath)
				dst[k] = cp
			}
			continue
		}
		dst[k] = v
	}
}

// mergeAdditiveList appends src entries after dst entries, dropping
// duplicates while keeping the first occurrence. Both sides tolerate nil.
func mergeAdditiveList(dst, src any) []any {
	out := []any{}
	seen := map[string]bool{}
	add := func(list any) {
		for _, item := range asList(list) {
			key := fmt.Sprint(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	add(dst)
	add(src)
	return out
}

func asList(v any) []any {
	switch list := v.(type) {
	case nil:
		return nil
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
