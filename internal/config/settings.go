package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration of the service.
// Values come from PANTRY_* environment variables, an optional YAML file and
// the defaults declared above, in that order of precedence.
type Settings struct {
	Server          ServerSettings  `mapstructure:"server"`
	Storage         StorageSettings `mapstructure:"storage"`
	HealthSource    HealthSource    `mapstructure:"health_source"`
	RefreshInterval time.Duration   `mapstructure:"refresh_interval"`
	Language        string          `mapstructure:"language"`
	ReminderTrigger string          `mapstructure:"reminder_trigger"` // ISO8601 duration, empty disables alarms
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Addr string `mapstructure:"addr"`
	Port int    `mapstructure:"port"`
}

// StorageSettings selects the persistence driver.
type StorageSettings struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// HealthSource is an optional remote health map merged on every refresh.
type HealthSource struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Address returns the listen address for net/http.
func (s ServerSettings) Address() string {
	return s.Addr + AddrSeparator + strconv.Itoa(s.Port)
}

// LoadSettings reads .env (if any), the optional settings file and the environment.
func LoadSettings(path string) (*Settings, error) {
	if err := godotenv.Load(EnvFile); err != nil {
		slog.Debug(MsgEnvFileMissing,
			LogKeyComponent, CompConfig,
			LogKeyError, err)
	}

	v := viper.New()
	v.SetDefault(KeyServerAddr, DefaultBindAddr)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyStorageDriver, DefaultStorageDriver)
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeyRefreshInterval, DefaultRefreshInterval)
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyReminderTrigger, DefaultReminderTrigger)
	v.SetDefault(KeyHealthURL, "")
	v.SetDefault(KeyHealthUser, "")
	v.SetDefault(KeyHealthPass, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrSettingsRead, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
	}

	if s.Storage.Path == "" {
		s.Storage.Path = DefaultJSONPath
		if s.Storage.Driver == StorageDriverBadger {
			s.Storage.Path = DefaultBadgerPath
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	slog.Info(MsgSettingsLoaded,
		LogKeyComponent, CompConfig,
		LogKeyAddr, s.Server.Address(),
		LogKeyDriver, s.Storage.Driver,
		LogKeyPath, s.Storage.Path,
		LogKeyInterval, s.RefreshInterval,
		LogKeyLang, s.Language,
		LogKeyURL, s.HealthSource.URL,
	)
	return &s, nil
}

// Validate checks that the settings describe a runnable service.
func (s *Settings) Validate() error {
	var errs []error
	if s.Server.Port < MinPort || s.Server.Port > MaxPort {
		errs = append(errs, errors.New(ErrPortRange))
	}
	switch s.Storage.Driver {
	case StorageDriverJSON, StorageDriverBadger:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrStorageDriver, s.Storage.Driver))
	}
	if s.Storage.Path == "" {
		errs = append(errs, errors.New(ErrStoragePath))
	}
	if s.RefreshInterval < MinRefreshPeriod {
		errs = append(errs, errors.New(ErrRefreshInterval))
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLanguage, s.Language))
	}
	return errors.Join(errs...)
}
