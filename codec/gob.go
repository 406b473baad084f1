// Copyright 2015 Aleksandr Demakin. All rights reserved.

package codec

import (
	"bytes"
	"encoding/gob"
)

// GobCodec is the default Codec, backed by encoding/gob. It is the one
// ambient concern in this module deliberately left on the standard
// library rather than a third-party serialization package: spec.md §6
// treats the codec as an external collaborator whose format is
// explicitly unprescribed and out of scope, and gob is self-delimiting
// (Decode consumes an exact byte count) without pulling in a format
// opinion the spec never asked for. Its output is deterministic per
// value except for maps, whose entries gob writes in Go's randomized map
// iteration order. See DESIGN.md.
type GobCodec[T any] struct{}

// NewGobCodec returns the default codec for T.
func NewGobCodec[T any]() GobCodec[T] {
	return GobCodec[T]{}
}

func (GobCodec[T]) Encode(value T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobCodec[T]) Decode(data []byte) (T, error) {
	var value T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
		return value, err
	}
	return value, nil
}
