package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/chatkeep/internal/httpapi"
	"github.com/mesh-intelligence/chatkeep/internal/logging"
	"github.com/mesh-intelligence/chatkeep/internal/paths"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "CHATKEEP"

	// Config keys.
	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyDSN       = "dsn"
	cfgKeyOwner     = "owner"
	cfgKeyLogLevel  = "log.level"
	cfgKeyLogFormat = "log.format"
	cfgKeyHTTPHost  = "http.host"
	cfgKeyHTTPPort  = "http.port"
)

// envKeys are the keys that CHATKEEP_* variables override. data_dir is
// left out: CHATKEEP_DATA_DIR ranks below config.yaml in directory
// resolution.
var envKeys = []string{
	cfgKeyBackend, cfgKeyDSN, cfgKeyOwner,
	cfgKeyLogLevel, cfgKeyLogFormat, cfgKeyHTTPHost, cfgKeyHTTPPort,
}

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend string         `yaml:"backend"`
	DataDir string         `yaml:"data_dir,omitempty"`
	DSN     string         `yaml:"dsn,omitempty"`
	Log     logging.Config `yaml:"log"`
	HTTP    httpSection    `yaml:"http"`
}

type httpSection struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// defaultConfigFile holds the values written on first run.
func defaultConfigFile() configFile {
	log := logging.NewDefaultConfig()
	h := httpapi.DefaultConfig()
	return configFile{
		Backend: types.BackendSQLite,
		Log:     logging.Config{Level: log.Level, Format: log.Format},
		HTTP:    httpSection{Host: h.Host, Port: h.Port},
	}
}

// loadConfig reads config.yaml from configDir with viper, creating the
// directory and a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if _, err := writeConfigIfMissing(filepath.Join(configDir, paths.ConfigFile), ""); err != nil {
		return nil, err
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogFormat, def.Log.Format)
	v.SetDefault(cfgKeyHTTPHost, def.HTTP.Host)
	v.SetDefault(cfgKeyHTTPPort, def.HTTP.Port)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether the file was written.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	cfg.DataDir = dataDir
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# chatkeep configuration. CHATKEEP_* environment variables override these keys.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// storeConfig builds the store configuration from viper and the resolved
// data directory.
func storeConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		DSN:     v.GetString(cfgKeyDSN),
	}
}

// logConfig builds the logging configuration from viper.
func logConfig(v *viper.Viper) *logging.Config {
	cfg := logging.NewDefaultConfig()
	cfg.Level = v.GetString(cfgKeyLogLevel)
	cfg.Format = v.GetString(cfgKeyLogFormat)
	return cfg
}
