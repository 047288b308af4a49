package domain

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SaveDateLayout is the timestamp layout of ObjectInfo.SaveDate.
const SaveDateLayout = "2006-01-02T15:04:05-0700"

var objectNamePattern = regexp.MustCompile(`^[A-Za-z0-9|._-]+$`)

// ObjectRef is a parsed workspace reference "ws/obj[/ver]".
// Workspace and object parts are either numeric ids or names.
type ObjectRef struct {
	WSID      int64
	Workspace string
	ObjID     int64
	Name      string

	// Version is 0 for the latest version.
	Version int64
}

// ParseRef parses a "ws/obj" or "ws/obj/ver" reference.
func ParseRef(ref string) (ObjectRef, error) {
	parts := strings.Split(ref, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return ObjectRef{}, fmt.Errorf("reference %q: %w", ref, ErrInvalidInput)
	}

	var r ObjectRef
	if id, err := strconv.ParseInt(parts[0], 10, 64); err == nil {
		r.WSID = id
	} else {
		r.Workspace = parts[0]
	}
	if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
		r.ObjID = id
	} else {
		r.Name = parts[1]
	}
	if (r.Workspace == "" && r.WSID <= 0) || (r.Name == "" && r.ObjID <= 0) {
		return ObjectRef{}, fmt.Errorf("reference %q: %w", ref, ErrInvalidInput)
	}

	if len(parts) == 3 {
		v, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || v <= 0 {
			return ObjectRef{}, fmt.Errorf("reference %q: bad version: %w", ref, ErrInvalidInput)
		}
		r.Version = v
	}
	return r, nil
}

// ValidObjectName reports whether name is an acceptable object name:
// alphanumerics and |._- only, and not an integer.
func ValidObjectName(name string) bool {
	if !objectNamePattern.MatchString(name) {
		return false
	}
	_, err := strconv.ParseInt(name, 10, 64)
	return err != nil
}

// AutoName returns the generated name for an unnamed object with id
// objID: auto<objID>, or auto<objID>-N for the smallest N >= 1 when
// taken reports the plain name as already in use.
func AutoName(objID int64, taken func(name string) (bool, error)) (string, error) {
	base := fmt.Sprintf("auto%d", objID)
	name := base
	for n := 1; ; n++ {
		used, err := taken(name)
		if err != nil {
			return "", err
		}
		if !used {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}

// Checksum returns the md5 checksum and size of the JSON encoding of data.
func Checksum(data TreeData) (sum string, size int64, err error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", 0, fmt.Errorf("encoding object data: %w", err)
	}
	h := md5.Sum(encoded)
	return hex.EncodeToString(h[:]), int64(len(encoded)), nil
}

// FormatSaveDate formats t in the ObjectInfo save date layout, in UTC.
func FormatSaveDate(t time.Time) string {
	return t.UTC().Format(SaveDateLayout)
}
