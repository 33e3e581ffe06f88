// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package event

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/samber/oops"
)

// separator splits the tag from the payload inside an envelope.
const separator byte = 0x00

// Envelope is a tag plus the raw JSON payload it describes.
type Envelope struct {
	Tag     Tag
	Payload []byte
}

// ParseEnvelope splits raw envelope bytes at the first zero byte.
// Without a zero byte the whole input is the tag and the payload is empty.
// A tag that is not valid UTF-8 becomes the empty tag.
func ParseEnvelope(data []byte) Envelope {
	tag, payload, _ := bytes.Cut(data, []byte{separator})
	if !utf8.Valid(tag) {
		tag = nil
	}
	return Envelope{Tag: Tag(tag), Payload: payload}
}

// Bytes encodes the envelope as "<tag> 0x00 <payload>".
func (e Envelope) Bytes() []byte {
	out := make([]byte, 0, len(e.Tag)+1+len(e.Payload))
	out = append(out, e.Tag...)
	out = append(out, separator)
	return append(out, e.Payload...)
}

// NewEnvelope marshals payload as JSON and wraps it with tag.
func NewEnvelope(tag Tag, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, oops.Code(CodeEncodeFailed).
			With("tag", string(tag)).
			Wrapf(err, "encode payload")
	}
	return Envelope{Tag: tag, Payload: data}, nil
}
