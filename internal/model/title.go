package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexTitle is a document title that tolerates two wire encodings.
//
// WHY NOT JUST string?
// The data this service inherited is inconsistent: most documents carry the
// title as a plain JSON string, but some older records store it as an ARRAY
// of strings. Search and display code in the previous backend coped by
// joining array titles with spaces wherever they surfaced.
//
// Rather than guessing which records exist in the wild and migrating blind,
// we pick ONE canonical in-memory representation (a plain string) and absorb
// the inconsistency at the decode boundary: UnmarshalJSON accepts either
// encoding, joining arrays with single spaces. MarshalJSON always emits a
// string, so every record we WRITE is in the canonical form — the store
// migrates itself one whole-list replace at a time.
type FlexTitle string

// String returns the canonical title text.
func (t FlexTitle) String() string { return string(t) }

// UnmarshalJSON accepts a JSON string or an array of strings.
// Arrays are joined with single spaces, matching how the previous backend
// displayed and searched them.
func (t *FlexTitle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = FlexTitle(s)
		return nil
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err == nil {
		*t = FlexTitle(strings.Join(parts, " "))
		return nil
	}

	return fmt.Errorf("model: title must be a string or an array of strings, got %s", data)
}

// MarshalJSON always emits the canonical string form.
func (t FlexTitle) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}
