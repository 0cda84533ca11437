// Package logging builds the zap loggers used across chatkeep and carries
// request correlation through context.
package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config holds logging configuration.
type Config struct {
	Level  string            `mapstructure:"level" yaml:"level"`
	Format string            `mapstructure:"format" yaml:"format"`
	Fields map[string]string `mapstructure:"fields" yaml:"fields,omitempty"`
}

// NewDefaultConfig returns info-level JSON logging tagged with the service
// name.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Fields: map[string]string{"service": "chatkeep"},
	}
}

// ZapLevel parses Level. An empty level means info.
func (c *Config) ZapLevel() (zapcore.Level, error) {
	if c.Level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
