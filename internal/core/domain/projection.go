package domain

import "strings"

// Project returns a copy of data holding only the requested fields.
//
// Each path is either a top-level key ("tree") or a slash-separated path
// into nested objects ("/tree_attributes/source"). Paths that do not exist
// are skipped. A nil or empty path list returns data unchanged.
func Project(data TreeData, paths []string) TreeData {
	if len(paths) == 0 {
		return data
	}

	out := make(TreeData)
	for _, path := range paths {
		parts := splitPath(path)
		if len(parts) == 0 {
			continue
		}
		copyPath(out, data, parts)
	}
	return out
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// copyPath copies src[parts...] into dst, creating intermediate maps.
func copyPath(dst, src map[string]any, parts []string) {
	v, ok := src[parts[0]]
	if !ok {
		return
	}
	if len(parts) == 1 {
		dst[parts[0]] = v
		return
	}

	child, ok := asMap(v)
	if !ok {
		return
	}
	if _, exists := child[parts[1]]; !exists {
		return
	}

	next, ok := asMap(dst[parts[0]])
	if !ok {
		next = make(map[string]any)
		dst[parts[0]] = next
	}
	copyPath(next, child, parts[1:])
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case TreeData:
		return m, true
	default:
		return nil, false
	}
}
