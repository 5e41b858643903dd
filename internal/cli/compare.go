package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdejongh/doppelganger/pkg/compare"
	"github.com/sdejongh/doppelganger/pkg/fingerprint"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <file> <file>",
		Short: "Check whether two files have identical content",
		Long: `Fingerprint two files and confirm the result byte-by-byte, the same way
hunt confirms a duplicate pair. Exits 0 when identical and 1 when different.`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := storage.NewLocal(".")
	if err != nil {
		return fmt.Errorf("failed to open working directory: %w", err)
	}
	defer backend.Close()

	identical, err := compareFiles(ctx, cmd.OutOrStdout(), backend, cfg.Performance.BufferSize, args[0], args[1])
	if err != nil {
		return err
	}
	if !identical {
		os.Exit(1)
	}
	return nil
}

// compareFiles prints both fingerprints and the byte-level verdict
func compareFiles(ctx context.Context, w io.Writer, backend storage.Backend, bufferSize int, a, b string) (bool, error) {
	paths := make([]string, 2)
	for i, p := range []string{a, b} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return false, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		paths[i] = abs
	}

	fp := fingerprint.New(backend, bufferSize)
	for _, p := range paths {
		rec, err := fp.Fingerprint(ctx, p)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "%016x  %s\n", rec.Fingerprint, rec.Path)
	}

	identical, err := compare.NewBinaryComparator(backend, bufferSize).Equal(ctx, paths[0], paths[1])
	if err != nil {
		return false, err
	}

	if identical {
		fmt.Fprintln(w, "identical")
	} else {
		fmt.Fprintln(w, "different")
	}
	return identical, nil
}
