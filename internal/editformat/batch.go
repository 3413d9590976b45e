// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd005-edit-formats R3;
//
//	docs/ARCHITECTURE § Edit Formats.
package editformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/petar-djukic/go-edit/internal/lines"
)

// batchEnvelope is the JSON transport form of an edit batch, for hosts
// and tools that do not speak the marker format.
type batchEnvelope struct {
	Edits []batchEdit `json:"edits"`
}

type batchEdit struct {
	Path   string `json:"path"`
	Old    string `json:"old"`
	New    string `json:"new"`
	Create bool   `json:"create,omitempty"`
}

// ParseBatch decodes a JSON edit batch. Invalid UTF-8 or JSON syntax
// fails the whole batch with the line of the offending byte; a
// structurally valid batch with a bad edit fails with that edit's
// ordinal position.
func ParseBatch(data []byte) ([]*ParsedEdit, error) {
	if idx := firstInvalidByte(data); idx >= 0 {
		return nil, &ParseError{
			Position: lineOfOffset(data, int64(idx)),
			Message:  "malformed text encoding",
		}
	}

	var env batchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		pos := 1
		if syn, ok := err.(*json.SyntaxError); ok {
			pos = lineOfOffset(data, syn.Offset)
		} else if typ, ok := err.(*json.UnmarshalTypeError); ok {
			pos = lineOfOffset(data, typ.Offset)
		}
		return nil, &ParseError{Position: pos, Message: err.Error()}
	}

	if len(env.Edits) == 0 {
		return nil, &NoEditsFoundError{}
	}

	out := make([]*ParsedEdit, 0, len(env.Edits))
	for i, be := range env.Edits {
		if be.Path == "" {
			return nil, &ParseError{
				Position: i + 1,
				Message:  fmt.Sprintf("edit %d: missing path", i+1),
			}
		}
		out = append(out, &ParsedEdit{
			Path:   be.Path,
			Old:    lines.Split(be.Old),
			New:    lines.Split(be.New),
			Create: be.Create,
		})
	}
	return out, nil
}

// EncodeBatch renders edits in the JSON transport form.
func EncodeBatch(edits []*ParsedEdit) ([]byte, error) {
	env := batchEnvelope{Edits: make([]batchEdit, 0, len(edits))}
	for _, ed := range edits {
		env.Edits = append(env.Edits, batchEdit{
			Path:   ed.Path,
			Old:    lines.Join(ed.Old),
			New:    lines.Join(ed.New),
			Create: ed.Create,
		})
	}
	return json.MarshalIndent(env, "", "  ")
}

// firstInvalidByte returns the offset of the first invalid UTF-8 byte,
// or -1 when the input is clean.
func firstInvalidByte(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// lineOfOffset converts a byte offset to a 1-based line number.
func lineOfOffset(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
