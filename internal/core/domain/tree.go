package domain

import "strings"

// TreeType is the workspace type string for phylogenetic trees.
const TreeType = "KBaseTrees.Tree"

// TreeField is the key in tree object data holding the newick string.
const TreeField = "tree"

// IsTreeType reports whether typ names the tree type, with or without
// a version suffix (e.g. "KBaseTrees.Tree-1.0").
func IsTreeType(typ string) bool {
	return typ == TreeType || strings.HasPrefix(typ, TreeType+"-")
}

// TreeData is the data payload of a tree object.
//
// Known fields are name, description, type, tree, tree_attributes,
// default_node_labels, ws_refs, kb_refs and leaf_list. Only the tree
// field is interpreted; everything else is passed through verbatim.
type TreeData map[string]any

// Newick returns the tree string held in the data.
// ok is false if the field is absent. A present field that is not a
// string is returned as "" with ok true.
func (d TreeData) Newick() (newick string, ok bool) {
	v, ok := d[TreeField]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// Clone returns a deep copy of the data. Nested maps and lists are
// copied; other values are shared.
func (d TreeData) Clone() TreeData {
	if d == nil {
		return nil
	}
	out := make(TreeData, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case TreeData:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// CloneMeta returns a copy of object metadata.
func CloneMeta(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

// ObjectData is a stored object together with its info record.
type ObjectData struct {
	Data TreeData   `json:"data"`
	Info ObjectInfo `json:"info"`
}

// ObjectSaveData is an object to be saved to a workspace.
type ObjectSaveData struct {
	// Type is the type string. Empty means the tree type.
	Type string `json:"type,omitempty"`

	// Data is the object payload.
	Data TreeData `json:"data"`

	// Name is the object name. Optional; one is generated if both Name
	// and ObjID are empty.
	Name string `json:"name,omitempty"`

	// ObjID is the id of an existing object to save over.
	ObjID int64 `json:"objid,omitempty"`

	// Meta is arbitrary user metadata.
	Meta map[string]string `json:"meta,omitempty"`

	// Hidden is 1 if the object should not be listed.
	Hidden int `json:"hidden,omitempty"`

	// Provenance is passed through to the workspace unchanged.
	Provenance []any `json:"provenance,omitempty"`
}

// Status is the static health record reported by the service.
type Status struct {
	State         string `json:"state"`
	Message       string `json:"message"`
	Version       string `json:"version"`
	GitURL        string `json:"git_url"`
	GitCommitHash string `json:"git_commit_hash"`
}
