package chunkstore

import (
	crand "crypto/rand"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := crand.Read(data)
	require.NoError(t, err)
	return data
}

func encodedSize(t *testing.T, v any) uint64 {
	t.Helper()
	data, err := CBORCodec{}.Marshal(v)
	require.NoError(t, err)
	return uint64(len(data))
}

type testChunk struct {
	data []byte
	size uint64 // encoded size
}

// makeChunks builds a random batch of randomly-sized chunks and reports
// their total encoded size.
func makeChunks(t *testing.T) ([]testChunk, uint64) {
	t.Helper()
	count := 8 + rand.Intn(56)
	chunks := make([]testChunk, 0, count)
	var total uint64
	for i := 0; i < count; i++ {
		data := randomBytes(t, 1+rand.Intn(255))
		size := encodedSize(t, data)
		chunks = append(chunks, testChunk{data: data, size: size})
		total += size
	}
	return chunks, total
}

func TestCreateMultipleInstancesInSameParent(t *testing.T) {
	t.Run("parent exists", func(t *testing.T) {
		parent := t.TempDir()

		s1, err := New[uint64, uint64](filepath.Join(parent, "store-1"), 64)
		require.NoError(t, err)
		defer s1.Close()

		s2, err := New[uint64, uint64](filepath.Join(parent, "store-2"), 64)
		require.NoError(t, err)
		defer s2.Close()
	})

	t.Run("parent does not exist yet", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "foo", "bar")

		s1, err := New[uint64, uint64](filepath.Join(parent, "store-1"), 64)
		require.NoError(t, err)
		defer s1.Close()

		s2, err := New[uint64, uint64](filepath.Join(parent, "store-2"), 64)
		require.NoError(t, err)
		defer s2.Close()
	})
}

func TestRootRemovedOnClose(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")

	store, err := New[uint64, uint64](root, 64)
	require.NoError(t, err)
	require.DirExists(t, root)

	require.NoError(t, store.Put(3, 4))

	// A second instance on the same root must fail without disturbing the
	// first.
	_, err = New[uint64, uint64](root, 64)
	require.ErrorIs(t, err, ErrAlreadyLocked)

	require.NoError(t, store.Reap(3))
	got, err := store.Get(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got)
	require.DirExists(t, root)

	require.NoError(t, store.Close())
	assert.NoDirExists(t, root)
}

func TestOpenClearsExistingContents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stale"), []byte("old"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stale-dir"), 0755))

	store, err := New[uint64, uint64](root, 64)
	require.NoError(t, err)
	defer store.Close()

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lock", entries[0].Name())
}

func TestSuccessfulPut(t *testing.T) {
	chunks, total := makeChunks(t)

	store, err := New[int, []byte](t.TempDir(), total)
	require.NoError(t, err)
	defer store.Close()

	for i := len(chunks) - 1; i >= 0; i-- {
		before := store.UsedSpace()
		assert.False(t, store.Has(i))
		require.NoError(t, store.Put(i, chunks[i].data))
		assert.Equal(t, before+chunks[i].size, store.UsedSpace())
		assert.True(t, store.Has(i))
		assert.LessOrEqual(t, store.UsedSpace(), store.MaxSpace())
	}
	assert.Equal(t, total, store.UsedSpace())

	keys := store.Keys()
	sort.Ints(keys)
	want := make([]int, len(chunks))
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, keys)
}

func TestFailedPutWhenNotEnoughSpace(t *testing.T) {
	const capacity = 32
	root := t.TempDir()

	store, err := New[uint8, []byte](root, capacity)
	require.NoError(t, err)
	defer store.Close()

	err = store.Put(1, randomBytes(t, capacity+1))
	require.ErrorIs(t, err, ErrNotEnoughSpace)

	// Neither the counter nor the filesystem changed.
	assert.Zero(t, store.UsedSpace())
	assert.False(t, store.Has(1))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lock", entries[0].Name())
}

func TestQuotaAccountsEncodedSize(t *testing.T) {
	store, err := New[uint8, []byte](t.TempDir(), 64)
	require.NoError(t, err)
	defer store.Close()

	small := randomBytes(t, 4)
	require.NoError(t, store.Put(1, small))
	assert.True(t, store.Has(1))

	// The encoding frames the payload with its length, so the accounted
	// size exceeds the raw four bytes.
	wantUsed := encodedSize(t, small)
	assert.Greater(t, wantUsed, uint64(4))
	assert.Equal(t, wantUsed, store.UsedSpace())

	err = store.Put(2, randomBytes(t, 100))
	require.ErrorIs(t, err, ErrNotEnoughSpace)
	assert.Equal(t, wantUsed, store.UsedSpace())
}

func TestDelete(t *testing.T) {
	chunks, total := makeChunks(t)

	store, err := New[int, []byte](t.TempDir(), total)
	require.NoError(t, err)
	defer store.Close()

	for i, chunk := range chunks {
		require.NoError(t, store.Put(i, chunk.data))
		assert.Equal(t, chunk.size, store.UsedSpace())
		assert.True(t, store.Has(i))

		require.NoError(t, store.Delete(i))
		assert.False(t, store.Has(i))
		assert.Zero(t, store.UsedSpace())
	}
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	store, err := New[uint64, uint64](t.TempDir(), 64)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Delete(42))
	assert.Zero(t, store.UsedSpace())
}

func TestPutAndGetRoundTrip(t *testing.T) {
	chunks, total := makeChunks(t)

	store, err := New[int, []byte](t.TempDir(), total)
	require.NoError(t, err)
	defer store.Close()

	for i, chunk := range chunks {
		require.NoError(t, store.Put(i, chunk.data))
	}
	for i, chunk := range chunks {
		require.NoError(t, store.Reap(i))
		got, err := store.Get(i)
		require.NoError(t, err)
		assert.Equal(t, chunk.data, got)
	}
}

func TestOverwriteValue(t *testing.T) {
	chunks, total := makeChunks(t)

	store, err := New[int, []byte](t.TempDir(), total)
	require.NoError(t, err)
	defer store.Close()

	for _, chunk := range chunks {
		require.NoError(t, store.Put(0, chunk.data))
		// Only the latest value is accounted, not the sum of overwrites.
		assert.Equal(t, chunk.size, store.UsedSpace())

		require.NoError(t, store.Reap(0))
		got, err := store.Get(0)
		require.NoError(t, err)
		assert.Equal(t, chunk.data, got)
	}
}

func TestGetAbsentKey(t *testing.T) {
	store, err := New[uint8, uint8](t.TempDir(), 64)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKeys(t *testing.T) {
	chunks, total := makeChunks(t)

	store, err := New[int, []byte](t.TempDir(), total)
	require.NoError(t, err)
	defer store.Close()

	for i, chunk := range chunks {
		assert.NotContains(t, store.Keys(), i)
		require.NoError(t, store.Put(i, chunk.data))
		assert.Contains(t, store.Keys(), i)
		assert.Len(t, store.Keys(), i+1)
	}

	for i := range chunks {
		assert.Contains(t, store.Keys(), i)
		require.NoError(t, store.Delete(i))
		assert.NotContains(t, store.Keys(), i)
		assert.Len(t, store.Keys(), len(chunks)-i-1)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	store, err := New[uint64, uint64](t.TempDir(), 64)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close()) // idempotent

	require.ErrorIs(t, store.Put(1, 2), ErrClosed)
	_, err = store.Get(1)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, store.Delete(1), ErrClosed)
	require.ErrorIs(t, store.Reap(1), ErrClosed)
	assert.False(t, store.Has(1))
}

func TestStructuredValues(t *testing.T) {
	type account struct {
		Owner   string `cbor:"owner"`
		Balance int64  `cbor:"balance"`
	}

	store, err := New[string, account](t.TempDir(), 1<<10)
	require.NoError(t, err)
	defer store.Close()

	want := account{Owner: "addr-1", Balance: 1024}
	require.NoError(t, store.Put("acct", want))
	require.NoError(t, store.Reap("acct"))

	got, err := store.Get("acct")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
