package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/internal/sqlstore"
)

// archiver is implemented by stores that dump to and load from JSONL.
type archiver interface {
	Export(ctx context.Context, dir string) (sqlstore.ExportCounts, error)
	Import(ctx context.Context, dir string) (sqlstore.ImportCounts, error)
}

// archive returns the session's store as an archiver.
func (s *session) archive() (archiver, error) {
	arc, ok := s.store.(archiver)
	if !ok {
		return nil, sysError("archive", fmt.Errorf("store %T cannot export", s.store))
	}
	return arc, nil
}

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to <table>.jsonl files in dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()
			arc, err := s.archive()
			if err != nil {
				return err
			}

			counts, err := arc.Export(cmd.Context(), args[0])
			if err != nil {
				return sysError("export", err)
			}
			return a.emit(cmd, counts, func(w io.Writer) {
				for _, table := range sortedKeys(counts) {
					fmt.Fprintf(w, "%-10s %d\n", table, counts[table])
				}
			})
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load <table>.jsonl files from dir, skipping records that do not fit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()
			arc, err := s.archive()
			if err != nil {
				return err
			}

			counts, err := arc.Import(cmd.Context(), args[0])
			if err != nil {
				return sysError("import", err)
			}
			return a.emit(cmd, counts, func(w io.Writer) {
				for _, table := range sortedKeys(counts.Loaded) {
					fmt.Fprintf(w, "%-10s %d loaded, %d skipped\n", table, counts.Loaded[table], counts.Skipped[table])
				}
			})
		},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
