package models

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FieldErrors holds one validation message per field. An empty slot means valid.
type FieldErrors [NumFields]string

// Get returns the message stored for f.
func (e FieldErrors) Get(f Field) string {
	if !f.Valid() {
		return ""
	}
	return e[f]
}

// Set stores msg for f; an empty msg clears the slot.
func (e *FieldErrors) Set(f Field, msg string) {
	if f.Valid() {
		e[f] = msg
	}
}

// Any reports whether at least one slot holds a message.
func (e FieldErrors) Any() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// Map returns the populated slots keyed by field key.
func (e FieldErrors) Map() map[string]string {
	out := make(map[string]string)
	for f, msg := range e {
		if msg != "" {
			out[Field(f).Key()] = msg
		}
	}
	return out
}

func (e *FieldErrors) fromMap(raw map[string]string) error {
	*e = FieldErrors{}
	for k, msg := range raw {
		f, ok := ParseField(k)
		if !ok {
			return fmt.Errorf("unknown field %q", k)
		}
		e[f] = msg
	}
	return nil
}

func (e FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

func (e *FieldErrors) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return e.fromMap(raw)
}

func (e FieldErrors) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(e.Map())
}

func (e *FieldErrors) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw map[string]string
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return e.fromMap(raw)
}

// FieldFlags holds one boolean per field, used for the touched state.
type FieldFlags [NumFields]bool

// Has reports whether f is flagged.
func (t FieldFlags) Has(f Field) bool {
	return f.Valid() && t[f]
}

// Mark flags f.
func (t *FieldFlags) Mark(f Field) {
	if f.Valid() {
		t[f] = true
	}
}

// Map returns the flagged slots keyed by field key.
func (t FieldFlags) Map() map[string]bool {
	out := make(map[string]bool)
	for f, set := range t {
		if set {
			out[Field(f).Key()] = true
		}
	}
	return out
}

func (t *FieldFlags) fromMap(raw map[string]bool) error {
	*t = FieldFlags{}
	for k, set := range raw {
		f, ok := ParseField(k)
		if !ok {
			return fmt.Errorf("unknown field %q", k)
		}
		t[f] = set
	}
	return nil
}

func (t FieldFlags) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

func (t *FieldFlags) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return t.fromMap(raw)
}

func (t FieldFlags) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(t.Map())
}

func (t *FieldFlags) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw map[string]bool
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return t.fromMap(raw)
}
