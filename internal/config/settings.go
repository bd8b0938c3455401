package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/zalando/go-keyring"
)

// Settings holds the runtime configuration of one integration instance.
// The zero value is not usable; obtain one through Defaults or Load.
type Settings struct {
	SourceMode      string `koanf:"source_mode"`
	URL             string `koanf:"url"`
	Username        string `koanf:"username"`
	Password        string `koanf:"password"`
	LocalPath       string `koanf:"local_path"`
	SurnameFilter   string `koanf:"surname_filter"`
	Limit           int    `koanf:"limit"`
	DisplayCount    int    `koanf:"display_count"`
	RefreshMinutes  int    `koanf:"refresh_minutes"`
	BindAddr        string `koanf:"bind_addr"`
	Port            string `koanf:"port"`
	Language        string `koanf:"language"`
	ReminderTrigger string `koanf:"reminder_trigger"` // ISO8601 duration, e.g. "-P1D"
}

// Defaults returns a Settings populated with the stock values.
func Defaults() *Settings {
	return &Settings{
		SourceMode:     SourceModeWeb,
		Limit:          DefaultLimit,
		DisplayCount:   DefaultDisplayCount,
		RefreshMinutes: DefaultRefreshMin,
		BindAddr:       DefaultBindAddr,
		Port:           DefaultPort,
		Language:       DefaultLanguage,
	}
}

// Load builds Settings by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. Defaults()
//  2. file (YAML) from filePath, or EnvConfigFile if filePath is empty
//  3. env (prefix GRAMPS_HA_)
func Load(filePath string) (*Settings, error) {
	k := koanf.New(KoanfDelim)

	if filePath == "" {
		filePath = os.Getenv(EnvConfigFile)
	}
	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, errors.Join(errors.New(ErrSettingsFile), err)
		}
	}

	// Map env keys like GRAMPS_HA_SURNAME_FILTER -> surname_filter.
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, KoanfDelim, func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Join(errors.New(ErrSettingsEnv), err)
	}

	settings := *Defaults()
	if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Join(errors.New(ErrSettingsParse), err)
	}

	settings.URL = strings.TrimRight(strings.TrimSpace(settings.URL), HandleSeparator)
	settings.SurnameFilter = strings.TrimSpace(settings.SurnameFilter)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks that the settings describe a runnable instance.
func (s *Settings) Validate() error {
	switch s.SourceMode {
	case SourceModeWeb:
		if s.URL == "" {
			return errors.New(ErrURLEmpty)
		}
	case SourceModeLocal:
		if s.LocalPath == "" {
			return errors.New(ErrLocalPathEmpty)
		}
	default:
		return errors.New(ErrModeUnsupport)
	}

	if s.Port == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}

	if s.Limit <= 0 {
		return errors.New(ErrLimitInvalid)
	}
	if s.RefreshMinutes <= 0 {
		return errors.New(ErrIntervalInvalid)
	}
	return nil
}

// RefreshInterval converts the configured cadence into a duration.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshMinutes) * time.Minute
}

// ResolvePassword fills Password from the OS keyring when it was not provided
// inline. The keyring entry is keyed by the configured username.
func (s *Settings) ResolvePassword() {
	if s.Password != "" || s.Username == "" {
		return
	}
	if p, err := keyring.Get(KeyringService, s.Username); err == nil {
		s.Password = p
	} else {
		slog.Debug(MsgPassKeyring,
			LogKeyUser, s.Username,
			LogKeyError, err,
			LogKeyComponent, CompConfig,
		)
	}
}
