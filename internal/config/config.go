package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultStateDBName    = "taskdash-state.db"
	DefaultAPIBaseURL     = "http://localhost:8000"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Check         string `toml:"check"`
	Create        string `toml:"create"`
	Edit          string `toml:"edit"`
	AddSubtask    string `toml:"add_subtask"`
	Refresh       string `toml:"refresh"`
	Archive       string `toml:"archive"`
	NextPanel     string `toml:"next_panel"`
	Filter        string `toml:"filter"`
	Sort          string `toml:"sort"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	RecurDone     string `toml:"recur_done"`
	RecurMissed   string `toml:"recur_missed"`
	RecurDeferred string `toml:"recur_deferred"`
}

type Config struct {
	APIBaseURL            string `toml:"api_base_url"`
	StateDBPath           string `toml:"state_db_path"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	SaveDebounceMS        int    `toml:"save_debounce_ms"`
	Keys                  Keymap `toml:"keys"`
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if nothing exists yet. The TASKDASH_API_URL environment variable
// overrides the configured base URL either way.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return applyEnv(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.StateDBPath == "" {
		cfg.StateDBPath = DefaultStateDBName
	}
	if cfg.SaveDebounceMS <= 0 {
		cfg.SaveDebounceMS = 500
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 10
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if u := os.Getenv("TASKDASH_API_URL"); u != "" {
		cfg.APIBaseURL = u
	}
	return cfg
}

// ResolvePath returns the default config location, preferring the user
// config dir and falling back to the working directory.
func ResolvePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "taskdash", DefaultConfigFileName)
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		APIBaseURL:            DefaultAPIBaseURL,
		StateDBPath:           DefaultStateDBName,
		RequestTimeoutSeconds: 10,
		SaveDebounceMS:        500,
		Keys: Keymap{
			Quit:          "q",
			Up:            "k",
			Down:          "j",
			Check:         " ",
			Create:        "c",
			Edit:          "e",
			AddSubtask:    "s",
			Refresh:       "r",
			Archive:       "A",
			NextPanel:     "tab",
			Filter:        "f",
			Sort:          "o",
			Confirm:       "enter",
			Cancel:        "esc",
			RecurDone:     "1",
			RecurMissed:   "2",
			RecurDeferred: "3",
		},
	}
}
