package services

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/custodia-labs/treeutils/internal/core/domain"
)

// maxSuggestionDistance bounds how far an unexpected key may be from a
// known key to be offered as a suggestion.
const maxSuggestionDistance = 2

// ParamSchema lists the keys an operation accepts.
type ParamSchema struct {
	Required []string
	Optional []string
}

// ParamWarning reports an unrecognised parameter key. Unexpected keys are
// not fatal; the operation proceeds and the caller decides how to surface it.
type ParamWarning struct {
	Key string `json:"key"`

	// Suggestion is the closest known key, if one is near enough.
	Suggestion string `json:"suggestion,omitempty"`
}

func (w ParamWarning) String() string {
	if w.Suggestion != "" {
		return fmt.Sprintf("unexpected parameter %s supplied (did you mean %s?)", w.Key, w.Suggestion)
	}
	return fmt.Sprintf("unexpected parameter %s supplied", w.Key)
}

// Schemas maps operation names to their parameter schemas.
var Schemas = map[string]ParamSchema{
	"get_trees": {
		Required: []string{"tree_refs"},
		Optional: []string{"included_fields"},
	},
	"save_trees": {
		Required: []string{"ws_id", "trees"},
		Optional: []string{"type"},
	},
	"tree_to_newick_file": {
		Required: []string{"destination_dir", "input_ref"},
	},
	"export_tree_newick": {
		Required: []string{"input_ref"},
	},
}

// TreeSchema is the schema of each element of save_trees' trees list.
var TreeSchema = ParamSchema{
	Required: []string{"data"},
	Optional: []string{"name", "hidden", "meta", "type", "objid", "provenance"},
}

// Check validates a set of supplied keys against the schema.
// It fails with a *domain.MissingParameterError if any required key is
// absent and returns one warning per unexpected key otherwise.
func (s ParamSchema) Check(keys []string) ([]ParamWarning, error) {
	return s.CheckAt(keys, -1)
}

// CheckAt is Check for an element of a nested list; index is reported
// in the error.
func (s ParamSchema) CheckAt(keys []string, index int) ([]ParamWarning, error) {
	supplied := make(map[string]bool, len(keys))
	for _, k := range keys {
		supplied[k] = true
	}

	var missing []string
	for _, k := range s.Required {
		if !supplied[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &domain.MissingParameterError{Keys: missing, Index: index}
	}

	known := s.known()
	var warnings []ParamWarning
	for _, k := range sortedCopy(keys) {
		if known[k] {
			continue
		}
		warnings = append(warnings, ParamWarning{Key: k, Suggestion: s.suggest(k)})
	}
	return warnings, nil
}

func (s ParamSchema) known() map[string]bool {
	known := make(map[string]bool, len(s.Required)+len(s.Optional))
	for _, k := range s.Required {
		known[k] = true
	}
	for _, k := range s.Optional {
		known[k] = true
	}
	return known
}

// suggest returns the known key closest to key, or "" if none is within
// maxSuggestionDistance.
func (s ParamSchema) suggest(key string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, candidate := range append(append([]string{}, s.Required...), s.Optional...) {
		d := levenshtein.ComputeDistance(key, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func sortedCopy(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}
