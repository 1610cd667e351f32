// Package config resolves gobi's runtime settings.
//
// Defaults live under ~/.config/gobi. An optional settings.yaml beside the
// core file overrides them, and GOBI_* environment variables override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvCoreFile     = "GOBI_CORE_FILE"
	EnvRecipeModule = "GOBI_RECIPE_MODULE"
	EnvPluginDir    = "GOBI_PLUGIN_DIR"
	EnvLogFile      = "GOBI_LOG_FILE"
	EnvMaxDepth     = "GOBI_MAX_DEPTH"

	// SettingsFile is read from the directory of the core file.
	SettingsFile = "settings.yaml"
	// ModuleName is the native recipe module looked up beside the executable.
	ModuleName = "gobi_recipes.so"
	// BuiltinModule as RecipeModule registers the compiled-in recipes
	// instead of loading a native module.
	BuiltinModule = "builtin"
	// LogOff as LogFile disables logging.
	LogOff = "off"

	DefaultMaxDepth = 16
)

// Settings holds the runtime configuration for gobi.
type Settings struct {
	// CoreFile is the root gobi file.
	CoreFile string `yaml:"core_file"`
	// RecipeModule is the native module exporting GobiRegisterRecipes.
	RecipeModule string `yaml:"recipe_module"`
	// PluginDir holds scripted recipe definitions.
	PluginDir string `yaml:"plugin_dir"`
	LogFile   string `yaml:"log_file"`
	// MaxDepth bounds include nesting.
	MaxDepth int `yaml:"max_depth"`
}

// New builds Settings for the current user and executable.
func New() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve home directory: %w", err)
	}
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: resolve working directory: %w", err)
	}
	return load(home, exeDir, wd, os.Getenv)
}

func load(home, exeDir, wd string, getenv func(string) string) (*Settings, error) {
	s := defaultSettings(home, exeDir)
	if core := strings.TrimSpace(getenv(EnvCoreFile)); core != "" {
		s.CoreFile = resolvePath(wd, core)
	}
	if err := s.loadFile(filepath.Join(filepath.Dir(s.CoreFile), SettingsFile)); err != nil {
		return nil, err
	}
	if err := s.applyEnv(getenv, wd); err != nil {
		return nil, err
	}
	s.applyDefaults(home, exeDir)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func defaultSettings(home, exeDir string) *Settings {
	s := &Settings{}
	s.applyDefaults(home, exeDir)
	return s
}

func (s *Settings) applyDefaults(home, exeDir string) {
	base := filepath.Join(home, ".config", "gobi")
	if s.CoreFile == "" {
		s.CoreFile = filepath.Join(base, "gobi.yaml")
	}
	if s.RecipeModule == "" {
		s.RecipeModule = filepath.Join(exeDir, ModuleName)
	}
	if s.PluginDir == "" {
		s.PluginDir = filepath.Join(base, "recipes")
	}
	if s.LogFile == "" {
		s.LogFile = filepath.Join(base, "logs", "gobi.log")
	}
	if s.MaxDepth == 0 {
		s.MaxDepth = DefaultMaxDepth
	}
}

// loadFile merges a settings file. Relative paths resolve against its
// directory. A missing file is not an error.
func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed Settings
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.normalize(filepath.Dir(path))
	s.merge(parsed)
	return nil
}

func (s *Settings) applyEnv(getenv func(string) string, wd string) error {
	env := Settings{
		RecipeModule: getenv(EnvRecipeModule),
		PluginDir:    getenv(EnvPluginDir),
		LogFile:      getenv(EnvLogFile),
	}
	if raw := strings.TrimSpace(getenv(EnvMaxDepth)); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer, got %q", EnvMaxDepth, raw)
		}
		env.MaxDepth = depth
		// 0 means unset to merge; an explicit 0 must still fail validation.
		if depth == 0 {
			env.MaxDepth = -1
		}
	}
	env.normalize(wd)
	s.merge(env)
	return nil
}

// merge copies every set field of other.
func (s *Settings) merge(other Settings) {
	if other.CoreFile != "" {
		s.CoreFile = other.CoreFile
	}
	if other.RecipeModule != "" {
		s.RecipeModule = other.RecipeModule
	}
	if other.PluginDir != "" {
		s.PluginDir = other.PluginDir
	}
	if other.LogFile != "" {
		s.LogFile = other.LogFile
	}
	if other.MaxDepth != 0 {
		s.MaxDepth = other.MaxDepth
	}
}

func (s *Settings) normalize(base string) {
	s.CoreFile = resolvePath(base, s.CoreFile)
	if strings.EqualFold(strings.TrimSpace(s.RecipeModule), BuiltinModule) {
		s.RecipeModule = BuiltinModule
	} else {
		s.RecipeModule = resolvePath(base, s.RecipeModule)
	}
	s.PluginDir = resolvePath(base, s.PluginDir)
	if strings.EqualFold(strings.TrimSpace(s.LogFile), LogOff) {
		s.LogFile = LogOff
	} else {
		s.LogFile = resolvePath(base, s.LogFile)
	}
}

func (s *Settings) validate() error {
	if s.CoreFile == "" {
		return fmt.Errorf("core file is required")
	}
	if s.MaxDepth < 1 {
		return fmt.Errorf("max depth must be >= 1")
	}
	return nil
}

// LoggingEnabled reports whether a log file should be opened.
func (s *Settings) LoggingEnabled() bool {
	return s.LogFile != LogOff
}

// BuiltinRecipes reports whether the compiled-in recipes replace the native
// module.
func (s *Settings) BuiltinRecipes() bool {
	return s.RecipeModule == BuiltinModule
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
