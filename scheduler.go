package chunkstore

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// pendingWrite tracks one in-flight background write: a done flag the
// worker raises after the durability barrier, and the handle to wait on.
type pendingWrite struct {
	done atomic.Bool
	wg   *conc.WaitGroup
}

// writeScheduler owns the background chunk writers. It keeps one entry per
// chunk name until that write is reaped, which bounds the table without
// stalling operations on unrelated chunks.
type writeScheduler struct {
	pending map[string]*pendingWrite
	log     *zap.Logger
}

func newWriteScheduler(log *zap.Logger) *writeScheduler {
	return &writeScheduler{
		pending: make(map[string]*pendingWrite),
		log:     log,
	}
}

// reap waits out any in-flight write for name and removes its entry, then
// drops every other entry whose writer already finished. Callers reap
// before mutating a chunk, which keeps at most one writer per name in
// flight.
func (s *writeScheduler) reap(name string) {
	if pw, ok := s.pending[name]; ok {
		pw.wg.Wait()
		delete(s.pending, name)
	}
	for other, pw := range s.pending {
		if pw.done.Load() {
			pw.wg.Wait()
			delete(s.pending, other)
		}
	}
}

// launch spawns the writer for one accepted chunk. The previous writer for
// name, if any, must have been reaped.
func (s *writeScheduler) launch(name, path string, data []byte) {
	pw := &pendingWrite{wg: conc.NewWaitGroup()}
	s.pending[name] = pw
	pw.wg.Go(func() {
		defer pw.done.Store(true)
		if err := writeChunk(path, data); err != nil {
			// Not surfaced to any caller; the space accountant stays
			// optimistic until this chunk is next overwritten or deleted.
			s.log.Warn("background chunk write failed",
				zap.String("chunk", name),
				zap.Error(err))
		}
	})
}

// writeChunk writes the chunk bytes and forces them to disk.
func writeChunk(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write chunk: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync chunk: %w", err)
	}
	return f.Close()
}
