// Package config resolves the command line settings and builds the logger.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting read from the environment,
// e.g. BOM2MD_PROMPT.
const EnvPrefix = "BOM2MD"

// Prompt kinds.
const (
	PromptGUI    = "gui"
	PromptEditor = "editor"
	PromptStdin  = "stdin"
)

// Setting keys, shared by flags and environment variables.
const (
	KeyPrompt   = "prompt"
	KeyEditor   = "editor"
	KeyLogLevel = "log-level"
	KeyVerbose  = "verbose"
)

type Config struct {
	Prompt   string `mapstructure:"prompt" validate:"required,oneof=gui editor stdin"`
	Editor   string `mapstructure:"editor"`
	LogLevel string `mapstructure:"log-level" validate:"required,oneof=debug info warn error"`
	Verbose  bool   `mapstructure:"verbose"`
}

// Defaults returns the settings used when nothing is given.
func Defaults() Config {
	return Config{Prompt: PromptGUI, LogLevel: "warn"}
}

// RegisterFlags adds the settings to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(KeyPrompt, d.Prompt, "field selection prompt: gui, editor or stdin")
	fs.String(KeyEditor, d.Editor, "editor command for --prompt editor (default $VISUAL, then $EDITOR)")
	fs.String(KeyLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.BoolP(KeyVerbose, "v", false, "enable debug logging")
}

// Load binds fs to a fresh viper instance, overlays BOM2MD_* environment
// variables and validates the result. Flags given explicitly win over the
// environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		Prompt:   strings.ToLower(strings.TrimSpace(v.GetString(KeyPrompt))),
		Editor:   v.GetString(KeyEditor),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		Verbose:  v.GetBool(KeyVerbose),
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings against their allowed values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewLogger returns a console logger writing to w, or stderr when w is nil,
// at the configured level.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return &log.Logger{
		Level: log.ParseLevel(c.LogLevel),
		Writer: &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    false,
			QuoteString:    true,
			EndWithMessage: true,
		},
	}
}
