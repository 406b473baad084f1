// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package codec is the external collaborator spec.md §6 describes: a
// pluggable T <-> []byte encoder the shared resource never inspects the
// format of, only the byte count of. Format choice is not prescribed --
// the requirement is determinism and self-delimitation within the exact
// byte count reported by the encoder.
package codec

// Codec encodes and decodes values of type T to and from a self-delimiting
// byte representation. Encode must be total on T; Decode must round-trip
// any output of Encode and must use exactly the bytes it is given -- the
// shared resource's metadata region trusts Decode's input length as the
// payload length, not a length prefix inside the bytes themselves.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}
