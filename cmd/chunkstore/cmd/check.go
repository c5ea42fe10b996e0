package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaultd/chunkstore"
)

var checkCmd = &cobra.Command{
	Use:   "check <dir>",
	Short: "Verify a directory can host a chunk store",
	Long: "Acquires and releases a store on the given directory, exercising the lock and the\n" +
		"file-name-length probe. Destructive: the directory is cleared and then removed.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, err := chunkstore.New[string, []byte](args[0], 0)
	if err != nil {
		return fmt.Errorf("%s cannot host a chunk store: %w", args[0], err)
	}
	if err := store.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "ok: %s can host a chunk store\n", args[0])
	return nil
}
