package cmd

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vaultd/chunkstore"
	"github.com/vaultd/chunkstore/internal/units"
)

var (
	benchChunks    int
	benchChunkSize string
	benchCompress  bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure chunk store write/read throughput",
	Long: "Fills a scratch store with random chunks and reads them back, reporting throughput.\n" +
		"The store directory is removed when the run finishes.",
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchChunks, "chunks", 100, "number of chunks to write (raise --max-space to match)")
	benchCmd.Flags().StringVar(&benchChunkSize, "chunk-size", "1MiB", "payload size of each chunk")
	benchCmd.Flags().BoolVar(&benchCompress, "compress", false, "store chunks zstd-compressed")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) (err error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	chunkSize, err := units.ParseSize(benchChunkSize)
	if err != nil {
		return fmt.Errorf("parse chunk-size: %w", err)
	}
	maxSpace, err := units.ParseSize(viper.GetString("max_space"))
	if err != nil {
		return fmt.Errorf("parse max-space: %w", err)
	}

	root := viper.GetString("root")
	if root == "" {
		root = filepath.Join(os.TempDir(), fmt.Sprintf("chunkstore-bench-%d", os.Getpid()))
	}

	opts := []chunkstore.Option{chunkstore.WithLogger(logger)}
	if benchCompress {
		codec, err := chunkstore.NewZstdCodec(chunkstore.CBORCodec{})
		if err != nil {
			return err
		}
		defer codec.Close()
		opts = append(opts, chunkstore.WithCodec(codec))
	}

	store, err := chunkstore.New[int, []byte](root, maxSpace, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	payload := make([]byte, chunkSize)
	if _, err := cryptorand.Read(payload); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "[bench] writing %d chunks of %s to %s\n",
		benchChunks, units.FormatSize(chunkSize), root)

	var writeTime, readTime time.Duration
	for i := 0; i < benchChunks; i++ {
		payload[i%len(payload)]++ // vary content between chunks

		start := time.Now()
		if err := store.Put(i, payload); err != nil {
			return fmt.Errorf("put chunk %d: %w", i, err)
		}
		writeTime += time.Since(start)

		pick := rand.Intn(i + 1)
		start = time.Now()
		if err := store.Reap(pick); err != nil {
			return err
		}
		if _, err := store.Get(pick); err != nil && !errors.Is(err, chunkstore.ErrNotFound) {
			return fmt.Errorf("get chunk %d: %w", pick, err)
		}
		readTime += time.Since(start)
	}

	total := uint64(benchChunks) * chunkSize
	fmt.Fprintf(os.Stderr, "[bench] wrote %s in %v (%s/s), read back in %v (%s/s)\n",
		units.FormatSize(total), writeTime.Round(time.Millisecond),
		units.FormatSize(perSecond(total, writeTime)),
		readTime.Round(time.Millisecond),
		units.FormatSize(perSecond(total, readTime)))
	fmt.Fprintf(os.Stderr, "[bench] used space %s of %s\n",
		units.FormatSize(store.UsedSpace()), units.FormatSize(store.MaxSpace()))
	return nil
}

func perSecond(bytes uint64, d time.Duration) uint64 {
	if d <= 0 {
		return bytes
	}
	return uint64(float64(bytes) / d.Seconds())
}
