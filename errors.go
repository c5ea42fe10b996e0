package chunkstore

import "errors"

var (
	// ErrNotFound reports a Get for a key with no readable chunk file.
	ErrNotFound = errors.New("chunkstore: chunk not found")

	// ErrNotEnoughSpace reports a Put that would exceed the store's
	// capacity. Nothing is mutated when it is returned.
	ErrNotEnoughSpace = errors.New("chunkstore: not enough space")

	// ErrAlreadyLocked reports that another store instance, in this
	// process or another, owns the root directory.
	ErrAlreadyLocked = errors.New("chunkstore: root directory already locked")

	// ErrSerialization wraps codec failures while encoding or decoding
	// keys and values.
	ErrSerialization = errors.New("chunkstore: serialization failure")

	// ErrClosed reports an operation on a store after Close.
	ErrClosed = errors.New("chunkstore: store is closed")
)
