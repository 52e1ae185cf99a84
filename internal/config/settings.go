package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Backends understood by store.Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Environment variables that override the config file.
const (
	EnvStore       = "FLOE_STORE"
	EnvPostgresDSN = "FLOE_POSTGRES_DSN"
	EnvUser        = "FLOE_USER"
	EnvLogLevel    = "FLOE_LOG_LEVEL"
)

// Default values used when neither file, env nor flags set a value.
const (
	DefaultUser         = "local"
	DefaultLogLevel     = "info"
	DefaultPreset       = "25/5"
	DefaultFocusMinutes = 50
	DefaultBreakMinutes = 10
	DefaultServerAddr   = "127.0.0.1:8787"
	DefaultDailyGoal    = 4
)

var validate = validator.New()

// Settings is the resolved application configuration.
type Settings struct {
	User       string `validate:"required"`
	LogLevel   string `validate:"oneof=debug info warn error"`
	QuotesPath string
	DailyGoal  int `validate:"gte=1,lte=48"`
	Store      StoreSettings
	Timer      TimerSettings
	ServerAddr string `validate:"required,hostname_port"`
}

// StoreSettings selects the persistence backend.
type StoreSettings struct {
	Backend     string `validate:"oneof=sqlite postgres"`
	Path        string `validate:"required_if=Backend sqlite"`
	PostgresDSN string `validate:"required_if=Backend postgres"`
}

// TimerSettings holds the timer preset and the custom preset's lengths.
type TimerSettings struct {
	Preset       string `validate:"required"`
	FocusMinutes int    `validate:"gte=1,lte=180"`
	BreakMinutes int    `validate:"gte=1,lte=60"`
}

// Defaults returns settings with every default applied.
func Defaults() Settings {
	return Settings{
		User:       DefaultUser,
		LogLevel:   DefaultLogLevel,
		QuotesPath: DefaultQuotesPath(),
		DailyGoal:  DefaultDailyGoal,
		Store: StoreSettings{
			Backend: BackendSQLite,
			Path:    DefaultDBPath(),
		},
		Timer: TimerSettings{
			Preset:       DefaultPreset,
			FocusMinutes: DefaultFocusMinutes,
			BreakMinutes: DefaultBreakMinutes,
		},
		ServerAddr: DefaultServerAddr,
	}
}

// Load resolves settings from defaults, the TOML file and the environment.
// The .env files are read first and never override variables already set.
func Load(configPath string, envFiles ...string) (Settings, error) {
	if err := LoadDotEnv(envFiles...); err != nil {
		return Settings{}, err
	}
	fileCfg, err := LoadConfig(configPath)
	if err != nil {
		return Settings{}, err
	}
	s := Defaults()
	s.ApplyFile(fileCfg)
	s.ApplyEnv(os.LookupEnv)
	return s, nil
}

// LoadDotEnv loads each existing .env file. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyFile copies every value set in the file over s.
func (s *Settings) ApplyFile(cfg FileConfig) {
	setString(&s.User, cfg.General.User)
	setString(&s.LogLevel, cfg.General.LogLevel)
	setString(&s.QuotesPath, cfg.General.Quotes)
	setInt(&s.DailyGoal, cfg.General.DailyGoal)
	setString(&s.Store.Backend, cfg.Store.Backend)
	setString(&s.Store.Path, cfg.Store.Path)
	setString(&s.Store.PostgresDSN, cfg.Store.PostgresDSN)
	setString(&s.Timer.Preset, cfg.Timer.Preset)
	setInt(&s.Timer.FocusMinutes, cfg.Timer.Focus)
	setInt(&s.Timer.BreakMinutes, cfg.Timer.Break)
	setString(&s.ServerAddr, cfg.Server.Addr)
}

// ApplyEnv overrides s with the FLOE_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	envString := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	envString(EnvStore, &s.Store.Backend)
	envString(EnvPostgresDSN, &s.Store.PostgresDSN)
	envString(EnvUser, &s.User)
	envString(EnvLogLevel, &s.LogLevel)
}

// Validate checks the resolved settings.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "hostname_port":
		return field + " must be host:port"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func setString(target, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func setInt(target, value *int) {
	if value == nil {
		return
	}
	*target = *value
}
