// Package chunkstore provides a quota-bounded, disk-backed key/value store
// for the data-holding duties of a storage node.
//
// Chunks are accepted synchronously and written to disk by background
// workers: Put returns as soon as quota bookkeeping is done, and the bytes
// plus the fsync happen on a per-chunk writer goroutine. At most one
// writer per chunk is ever in flight; a Put or Delete for a key first
// waits out the previous writer for that same key and never blocks on
// unrelated keys.
//
// Basic usage:
//
//	store, err := chunkstore.New[string, []byte](dir, 64<<20)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	// Accept a chunk (written durably in the background)
//	store.Put("chunk-1", data)
//
//	// Read it back
//	data, err := store.Get("chunk-1")
//
//	// Membership and enumeration
//	if store.Has("chunk-1") { ... }
//	for _, key := range store.Keys() { ... }
//
//	// Quota bookkeeping
//	fmt.Println(store.UsedSpace(), "of", store.MaxSpace())
//
// The store is scratch space, not an archive: opening a root directory
// clears any pre-existing contents, and Close releases the directory lock
// and deletes the root with everything in it. Chunk data never outlives
// the owning Store.
//
// A Store is a single-owner handle. It must not be called from multiple
// goroutines without external synchronization; internal synchronization
// covers only the one-writer-per-chunk rule.
package chunkstore
