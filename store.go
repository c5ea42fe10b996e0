package chunkstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vaultd/chunkstore/internal/dirguard"
)

// Store is a quota-bounded, non-persistent, disk-backed key/value store.
// Values are held as one file per chunk under a root directory that the
// store owns exclusively for its lifetime.
type Store[K, V any] struct {
	guard  *dirguard.Guard
	codec  Codec
	space  spaceAccountant
	sched  *writeScheduler
	keys   map[string]K // chunk name -> accepted key
	log    *zap.Logger
	closed bool
}

// New opens a store rooted at root with maxSpace bytes of capacity. The
// directory is created if absent and cleared of any pre-existing contents:
// the store is scratch space, not an archive. New fails with
// ErrAlreadyLocked if another store instance, in this process or another,
// owns root.
func New[K, V any](root string, maxSpace uint64, opts ...Option) (*Store[K, V], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	guard, err := dirguard.Acquire(root, MaxChunkNameLen)
	if err != nil {
		if errors.Is(err, dirguard.ErrLocked) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyLocked, root)
		}
		return nil, err
	}

	options.Logger.Debug("chunk store opened",
		zap.String("root", root),
		zap.Uint64("max_space", maxSpace))

	return &Store[K, V]{
		guard: guard,
		codec: options.Codec,
		space: spaceAccountant{max: maxSpace},
		sched: newWriteScheduler(options.Logger),
		keys:  make(map[string]K),
		log:   options.Logger,
	}, nil
}

// Put accepts value under key and schedules it for durable storage. A nil
// return means the chunk is queued, not that it is durable yet: the bytes
// and the fsync happen on a background worker. An existing value for key
// is overwritten.
//
// Put fails with ErrNotEnoughSpace when the encoded value does not fit the
// remaining capacity; neither the counters nor the filesystem change in
// that case.
func (s *Store[K, V]) Put(key K, value V) error {
	if s.closed {
		return ErrClosed
	}
	name, err := s.chunkNameFor(key)
	if err != nil {
		return err
	}
	s.sched.reap(name)

	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode value: %v", ErrSerialization, err)
	}
	if err := s.space.check(uint64(len(data))); err != nil {
		return err
	}

	// Best effort: a leftover file for this name is debited at its actual
	// on-disk size and dropped before the new write is credited.
	path := s.chunkPath(name)
	_ = s.removeChunkFile(path)

	s.space.credit(uint64(len(data)))
	s.keys[name] = key
	s.sched.launch(name, path, data)
	return nil
}

// Get returns the value stored under key.
//
// Get reads the chunk file directly and is not synchronized with an
// in-flight background write for the same key: racing a Put, it may find
// the file missing or partially written. Callers that need
// read-your-write ordering call Reap first.
func (s *Store[K, V]) Get(key K) (V, error) {
	var value V
	if s.closed {
		return value, ErrClosed
	}
	name, err := s.chunkNameFor(key)
	if err != nil {
		return value, err
	}
	data, err := os.ReadFile(s.chunkPath(name))
	if err != nil {
		return value, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := s.codec.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: decode value: %v", ErrSerialization, err)
	}
	return value, nil
}

// Delete removes the chunk stored under key, debiting its actual on-disk
// size. Deleting an absent key is a no-op.
func (s *Store[K, V]) Delete(key K) error {
	if s.closed {
		return ErrClosed
	}
	name, err := s.chunkNameFor(key)
	if err != nil {
		return err
	}
	s.sched.reap(name)
	delete(s.keys, name)
	return s.removeChunkFile(s.chunkPath(name))
}

// Has reports whether a value has been accepted under key and not since
// deleted. It never fails; any lookup error reports false.
func (s *Store[K, V]) Has(key K) bool {
	if s.closed {
		return false
	}
	name, err := s.chunkNameFor(key)
	if err != nil {
		return false
	}
	_, ok := s.keys[name]
	return ok
}

// Keys returns the accepted and not yet deleted keys, in no particular
// order.
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, key)
	}
	return keys
}

// Reap waits for any in-flight background write for key to finish, and
// drops the records of finished writers for other keys. Callers use it to
// establish read-your-write ordering before a Get.
func (s *Store[K, V]) Reap(key K) error {
	if s.closed {
		return ErrClosed
	}
	name, err := s.chunkNameFor(key)
	if err != nil {
		return err
	}
	s.sched.reap(name)
	return nil
}

// UsedSpace returns the accepted byte volume currently accounted against
// the capacity ceiling.
func (s *Store[K, V]) UsedSpace() uint64 { return s.space.used }

// MaxSpace returns the capacity ceiling.
func (s *Store[K, V]) MaxSpace() uint64 { return s.space.max }

// Close releases the directory lock and deletes the root directory with
// every chunk in it; the store holds scratch data that never outlives its
// owner. Close does not wait for pending background writes. It is
// idempotent.
func (s *Store[K, V]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debug("chunk store closed", zap.String("root", s.guard.Root()))
	return s.guard.Release()
}

func (s *Store[K, V]) chunkNameFor(key K) (string, error) {
	encoded, err := s.codec.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("%w: encode key: %v", ErrSerialization, err)
	}
	return chunkName(encoded), nil
}

func (s *Store[K, V]) chunkPath(name string) string {
	return filepath.Join(s.guard.Root(), name)
}

// removeChunkFile debits the actual on-disk size of the chunk file and
// removes it. An absent file is a no-op.
func (s *Store[K, V]) removeChunkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	s.space.debit(uint64(info.Size()))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove chunk: %w", err)
	}
	return nil
}
