// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package event

import (
	"encoding/json"

	"github.com/samber/oops"
)

// Error codes for envelope and outcome encoding.
const (
	CodeEncodeFailed     = "ENCODE_FAILED"
	CodeMalformedOutcome = "MALFORMED_OUTCOME"
)

// Outcome is the guard's decision for one event. The zero value is the
// default outcome: not cancelled, no modifications.
//
// Modifications is nil unless a handler intends to rewrite block
// properties; a nil map is omitted from the encoded form.
type Outcome struct {
	Cancelled     bool              `json:"cancelled"`
	Modifications map[string]string `json:"modifications,omitempty"`
}

// Encode returns one byte (1 if cancelled, 0 otherwise) followed by the JSON
// encoding of Modifications when present.
func (o Outcome) Encode() []byte {
	out := []byte{0}
	if o.Cancelled {
		out[0] = 1
	}
	if o.Modifications == nil {
		return out
	}
	mods, err := json.Marshal(o.Modifications)
	if err != nil {
		return out
	}
	return append(out, mods...)
}

// DecodeOutcome parses bytes produced by Encode.
func DecodeOutcome(data []byte) (Outcome, error) {
	if len(data) == 0 {
		return Outcome{}, oops.Code(CodeMalformedOutcome).Errorf("outcome is empty")
	}

	out := Outcome{Cancelled: data[0] == 1}
	if len(data) == 1 {
		return out, nil
	}

	if err := json.Unmarshal(data[1:], &out.Modifications); err != nil {
		return Outcome{Cancelled: out.Cancelled}, oops.Code(CodeMalformedOutcome).
			With("length", len(data)).
			Wrapf(err, "decode modifications")
	}
	return out, nil
}
