package dto

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Text is a request field expected to hold a JSON string. A value of any
// other JSON type sets Invalid instead of failing the whole body, so the
// field can be reported together with every other violation.
type Text struct {
	Value   string
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	if err := json.Unmarshal(b, &t.Value); err != nil {
		t.Invalid = true
	}
	return nil
}

// Amount holds a monetary request field as text. JSON numbers keep their
// literal, strings their content. Other JSON types keep their raw text so
// decimal parsing rejects them later.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	*a = Amount(b)
	return nil
}

// mistyped returns the names of the fields whose Text is Invalid.
func mistyped(names []string, fields ...Text) []string {
	var out []string
	for i, f := range fields {
		if f.Invalid {
			out = append(out, names[i])
		}
	}
	return out
}
