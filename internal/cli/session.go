package cli

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/chatkeep/internal/logging"
	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/internal/paths"
	"github.com/mesh-intelligence/chatkeep/pkg/conversation"
	"github.com/mesh-intelligence/chatkeep/pkg/store"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// session is an attached store with a manager on top. Commands open one,
// use it, and close it.
type session struct {
	v       *viper.Viper
	dataDir string
	store   types.Store
	log     *logging.Logger
	metrics *metrics.Metrics
	mgr     *conversation.Manager
}

// settings resolves the config directory, loads config.yaml, and resolves
// the data directory.
func (a *app) settings() (*viper.Viper, string, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return nil, "", sysError("resolve config dir", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, "", sysError("load config", err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, "", sysError("resolve data dir", err)
	}
	return v, dataDir, nil
}

// logger returns the configured logger when verbose is set and a no-op
// logger otherwise.
func (a *app) logger(v *viper.Viper, verbose bool) (*logging.Logger, error) {
	if !verbose {
		return logging.NewNop(), nil
	}
	log, err := logging.NewLogger(logConfig(v))
	if err != nil {
		return nil, userError(err)
	}
	return log, nil
}

// open attaches the configured store.
func (a *app) open() (*session, error) {
	v, dataDir, err := a.settings()
	if err != nil {
		return nil, err
	}
	cfg := storeConfig(v, dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, userError(err)
	}
	log, err := a.logger(v, a.flags.verbose)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg)
	if err != nil {
		return nil, sysError("attach store", err)
	}
	mt := metrics.New(metrics.DefaultConfig())
	return &session{
		v:       v,
		dataDir: dataDir,
		store:   s,
		log:     log,
		metrics: mt,
		mgr:     conversation.New(s, conversation.WithLogger(log), conversation.WithMetrics(mt)),
	}, nil
}

func (s *session) close() {
	s.store.Detach()
	s.log.Sync()
}

// owner returns the acting user from --owner or CHATKEEP_OWNER.
func (a *app) owner(s *session) (string, error) {
	owner := strings.TrimSpace(a.flags.owner)
	if owner == "" {
		owner = strings.TrimSpace(s.v.GetString(cfgKeyOwner))
	}
	if owner == "" {
		return "", userError(errNoOwner)
	}
	return owner, nil
}
