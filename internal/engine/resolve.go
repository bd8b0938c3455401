package engine

import (
	"strings"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/EdgarM73/gramps-ha/internal/gramps"
)

// refKeys lists the accepted handle keys in priority order.
var refKeys = [...]string{"ref", "handle", "hlink"}

// ResolveEventHandle normalizes an event reference into a canonical handle.
// The first key carrying a non-empty value wins; if that value is not a
// string the reference is unresolvable. Path-like values are stripped of
// trailing separators and reduced to their final segment.
//
// Resolution is idempotent: the same reference always yields the same handle
// or consistently fails. An absent or empty reference is missing data, not
// an error.
func ResolveEventHandle(ref gramps.EventReference) (string, bool) {
	if len(ref) == 0 {
		return "", false
	}

	var candidate any
	for _, key := range refKeys {
		if v, ok := ref[key]; ok && present(v) {
			candidate = v
			break
		}
	}
	if candidate == nil {
		return "", false
	}

	handle, ok := candidate.(string)
	if !ok {
		return "", false
	}

	if strings.Contains(handle, config.HandleSeparator) {
		handle = strings.TrimRight(handle, config.HandleSeparator)
		if i := strings.LastIndex(handle, config.HandleSeparator); i >= 0 {
			handle = handle[i+1:]
		}
	}

	if handle == "" {
		return "", false
	}
	return handle, true
}

// present reports whether a decoded JSON value counts as a usable candidate.
// Empty strings, zeros, false and null are treated as absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
