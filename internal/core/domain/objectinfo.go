package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ObjectInfo describes a stored object version.
// On the wire it is an 11-element tuple:
// [objid, name, type, save_date, version, saved_by, wsid, workspace, chsum, size, meta].
type ObjectInfo struct {
	ObjID     int64
	Name      string
	Type      string
	SaveDate  string
	Version   int64
	SavedBy   string
	WSID      int64
	Workspace string
	Checksum  string
	Size      int64
	Meta      map[string]string
}

// Ref returns the "wsid/objid/version" reference for this object version.
func (i ObjectInfo) Ref() string {
	return fmt.Sprintf("%d/%d/%d", i.WSID, i.ObjID, i.Version)
}

// MarshalJSON encodes the info as a tuple.
func (i ObjectInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		i.ObjID, i.Name, i.Type, i.SaveDate, i.Version, i.SavedBy,
		i.WSID, i.Workspace, i.Checksum, i.Size, i.Meta,
	})
}

// UnmarshalJSON decodes the tuple form.
func (i *ObjectInfo) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("decoding object info: %w", err)
	}
	if len(tuple) != 11 {
		return fmt.Errorf("decoding object info: expected 11 elements, got %d", len(tuple))
	}

	var out ObjectInfo
	fields := []any{
		&out.ObjID, &out.Name, &out.Type, &out.SaveDate, &out.Version, &out.SavedBy,
		&out.WSID, &out.Workspace, &out.Checksum, &out.Size, &out.Meta,
	}
	for n, f := range fields {
		if isJSONNull(tuple[n]) {
			continue
		}
		if err := json.Unmarshal(tuple[n], f); err != nil {
			return fmt.Errorf("decoding object info element %d: %w", n, err)
		}
	}

	*i = out
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
