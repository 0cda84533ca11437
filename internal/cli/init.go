package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/internal/paths"
	"github.com/mesh-intelligence/chatkeep/pkg/store"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize chatkeep storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing,\nand create the database schema.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError("create config directory", err)
	}

	// An explicit --data-dir is recorded so later runs find the same data.
	var recorded string
	if a.flags.dataDir != "" {
		if recorded, err = filepath.Abs(a.flags.dataDir); err != nil {
			return sysError("resolve data dir", err)
		}
	}
	configPath := filepath.Join(configDir, paths.ConfigFile)
	if _, err := writeConfigIfMissing(configPath, recorded); err != nil {
		return sysError("write config", err)
	}

	v, dataDir, err := a.settings()
	if err != nil {
		return err
	}
	cfg := storeConfig(v, dataDir)
	if err := cfg.Validate(); err != nil {
		return userError(err)
	}
	s, err := store.Open(cfg)
	if err != nil {
		return sysError("initialize storage", err)
	}
	if err := s.Detach(); err != nil {
		return sysError("finalize storage", err)
	}

	return a.emit(cmd, map[string]string{"config": configPath, "data_dir": dataDir, "backend": cfg.Backend}, func(w io.Writer) {
		fmt.Fprintf(w, "chatkeep initialized\nconfig: %s\ndata:   %s\n", configPath, dataDir)
	})
}
