// Package config loads docstore's layered JSONC configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrRootEmpty          = errors.New("root cannot be empty")
	ErrInvalidValue       = errors.New("invalid value")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Root          string `json:"root"`
	ThumbnailSize int    `json:"thumbnail_size,omitempty"`
	SearchIndex   string `json:"search_index,omitempty"`
	PDFToPPM      string `json:"pdftoppm,omitempty"`
	EbookMeta     string `json:"ebook_meta,omitempty"`
	VerifyWorkers int    `json:"verify_workers,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd   string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	RootAbs        string `json:"-"` // Absolute path to the store root
	SearchIndexAbs string `json:"-"` // Absolute path to the mirror database, empty if disabled

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Root:          ".",
		ThumbnailSize: 400,
		VerifyWorkers: 4,
	}
}

// FileName is the default project config file name.
const FileName = ".docstore.json"

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/docstore/config.json if set, otherwise
// ~/.config/docstore/config.json. Returns empty string if home directory
// cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "docstore", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "docstore", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	RootOverride    string            // --root flag value; empty means no override
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file at default location (.docstore.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3, must exist)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalCfgPath, err := loadOptional(globalPath(input.Env))
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalCfgPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if input.RootOverride != "" {
		cfg.Root = input.RootOverride
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.RootAbs = absFrom(workDir, cfg.Root)

	if cfg.SearchIndex != "" {
		cfg.SearchIndexAbs = absFrom(cfg.RootAbs, cfg.SearchIndex)
	}

	return cfg, nil
}

func absFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(base, p)
}

func loadOptional(path string) (fileConfig, string, error) {
	if path == "" {
		return fileConfig{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return fileConfig{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads the project config file (.docstore.json) or an explicit config file.
func loadProject(workDir, configPath string) (fileConfig, string, error) {
	if configPath == "" {
		return loadOptional(filepath.Join(workDir, FileName))
	}

	cfgFile := absFrom(workDir, configPath)

	_, statErr := os.Stat(cfgFile)
	if statErr != nil {
		return fileConfig{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(cfgFile, true)
	if err != nil {
		return fileConfig{}, "", err
	}

	return cfg, cfgFile, nil
}

// fileConfig is one parsed file. Pointers distinguish "absent" from an
// explicit zero or empty value.
type fileConfig struct {
	Root          *string `json:"root"`
	ThumbnailSize *int    `json:"thumbnail_size"`
	SearchIndex   *string `json:"search_index"`
	PDFToPPM      *string `json:"pdftoppm"`
	EbookMeta     *string `json:"ebook_meta"`
	VerifyWorkers *int    `json:"verify_workers"`
}

// loadFile loads a config file. If mustExist is false, missing files return zero config.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if mustExist {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return fileConfig{}, false, nil
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	if cfg.Root != nil && *cfg.Root == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrRootEmpty)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.Root != nil {
		base.Root = *overlay.Root
	}

	if overlay.ThumbnailSize != nil {
		base.ThumbnailSize = *overlay.ThumbnailSize
	}

	if overlay.SearchIndex != nil {
		base.SearchIndex = *overlay.SearchIndex
	}

	if overlay.PDFToPPM != nil {
		base.PDFToPPM = *overlay.PDFToPPM
	}

	if overlay.EbookMeta != nil {
		base.EbookMeta = *overlay.EbookMeta
	}

	if overlay.VerifyWorkers != nil {
		base.VerifyWorkers = *overlay.VerifyWorkers
	}

	return base
}

func validate(cfg Config) error {
	if cfg.Root == "" {
		return ErrRootEmpty
	}

	if cfg.ThumbnailSize <= 0 {
		return fmt.Errorf("%w: thumbnail_size must be positive, got %d", ErrInvalidValue, cfg.ThumbnailSize)
	}

	if cfg.VerifyWorkers <= 0 {
		return fmt.Errorf("%w: verify_workers must be positive, got %d", ErrInvalidValue, cfg.VerifyWorkers)
	}

	return nil
}
