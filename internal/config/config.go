package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/atomicstack/unit-control/internal/app"
	"github.com/atomicstack/unit-control/internal/systemd"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the config file that was read, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envScope     = "UNIT_CONTROL_SCOPE"
	envUnits     = "UNIT_CONTROL_UNITS"
	envEditorEnv = "UNIT_CONTROL_EDITOR_ENV"
	envEditor    = "UNIT_CONTROL_EDITOR"
	envUnitDir   = "UNIT_CONTROL_UNIT_DIR"
	envDebounce  = "UNIT_CONTROL_DEBOUNCE"
	envRefresh   = "UNIT_CONTROL_REFRESH"
	envTrace     = "UNIT_CONTROL_TRACE"
	envLogFile   = "UNIT_CONTROL_LOG_FILE"
	envLogLimit  = "UNIT_CONTROL_LOG_LIMIT"
	envConfig    = "UNIT_CONTROL_CONFIG"
)

const (
	defaultConfigPath = "~/.config/unit-control/config.toml"
	systemUnitDir     = "/etc/systemd/system"
	userUnitDir       = "~/.config/systemd/user"
)

// keyEnv maps each configurable key to its environment variable.
var keyEnv = map[string]string{
	"scope":      envScope,
	"units":      envUnits,
	"editor-env": envEditorEnv,
	"editor":     envEditor,
	"unit-dir":   envUnitDir,
	"debounce":   envDebounce,
	"refresh":    envRefresh,
	"trace":      envTrace,
	"log-file":   envLogFile,
	"log-limit":  envLogLimit,
}

// Load parses configuration from CLI arguments, environment variables and
// the optional config file.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Precedence is
// flag, then environment, then config file, then built-in default.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("unit-control", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	scope := fs.String("scope", envOrDefault(env, envScope, "system"), "which units to show: system, user or all")
	units := fs.String("units", envOrDefault(env, envUnits, ""), "comma separated allow-list of units to show")
	editorEnv := fs.String("editor-env", envOrDefault(env, envEditorEnv, "EDITOR"), "environment variable naming the editor")
	editor := fs.String("editor", envOrDefault(env, envEditor, "vim"), "editor used when the editor variable is unset")
	unitDir := fs.String("unit-dir", envOrDefault(env, envUnitDir, ""), "directory new unit files are written to")
	debounce := fs.Duration("debounce", envOrDuration(env, envDebounce, 0), "quiet interval before a coalesced render")
	refresh := fs.Duration("refresh", envOrDuration(env, envRefresh, 0), "periodic unit refresh interval (0 disables)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	logLimit := fs.Int("log-limit", envOrInt(env, envLogLimit, 0), "journal lines kept per unit (0 uses the default)")
	configPath := fs.String("config", envOrDefault(env, envConfig, ""), "path to a TOML or YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	fromFileOrDefault := func(key string) bool {
		if explicit[key] {
			return false
		}
		_, inEnv := env[keyEnv[key]]
		return !inEnv
	}

	file, err := readFile(*configPath, env["HOME"])
	if err != nil {
		return Config{}, err
	}
	if file != nil {
		if fromFileOrDefault("scope") && file.IsSet("scope") {
			*scope = file.GetString("scope")
		}
		if fromFileOrDefault("units") && file.IsSet("units") {
			*units = strings.Join(file.GetStringSlice("units"), ",")
		}
		if fromFileOrDefault("editor-env") && file.IsSet("editor-env") {
			*editorEnv = file.GetString("editor-env")
		}
		if fromFileOrDefault("editor") && file.IsSet("editor") {
			*editor = file.GetString("editor")
		}
		if fromFileOrDefault("unit-dir") && file.IsSet("unit-dir") {
			*unitDir = file.GetString("unit-dir")
		}
		if fromFileOrDefault("debounce") && file.IsSet("debounce") {
			*debounce = file.GetDuration("debounce")
		}
		if fromFileOrDefault("refresh") && file.IsSet("refresh") {
			*refresh = file.GetDuration("refresh")
		}
		if fromFileOrDefault("trace") && file.IsSet("trace") {
			*trace = file.GetBool("trace")
		}
		if fromFileOrDefault("log-file") && file.IsSet("log-file") {
			*logFile = file.GetString("log-file")
		}
		if fromFileOrDefault("log-limit") && file.IsSet("log-limit") {
			*logLimit = file.GetInt("log-limit")
		}
	}

	parsedScope, err := systemd.ParseScope(*scope)
	if err != nil {
		return Config{}, err
	}
	dir, err := resolveUnitDir(*unitDir, parsedScope)
	if err != nil {
		return Config{}, err
	}
	logPath, err := homedir.Expand(*logFile)
	if err != nil {
		return Config{}, fmt.Errorf("expand log file: %w", err)
	}

	cfg := Config{
		App: app.Config{
			Scope:     parsedScope,
			Units:     splitList(*units),
			EditorEnv: *editorEnv,
			Editor:    *editor,
			UnitDir:   dir,
			Debounce:  *debounce,
			Refresh:   *refresh,
			LogLimit:  *logLimit,
		},
		Logging: Logging{
			FilePath: logPath,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"scope":     *scope,
			"units":     *units,
			"editorEnv": *editorEnv,
			"editor":    *editor,
			"unitDir":   dir,
			"debounce":  debounce.String(),
			"refresh":   refresh.String(),
			"trace":     strconv.FormatBool(*trace),
			"logFile":   logPath,
			"logLimit":  strconv.Itoa(*logLimit),
		},
		Args: append([]string(nil), args...),
	}
	if file != nil {
		cfg.File = file.ConfigFileUsed()
		cfg.Flags["config"] = cfg.File
	}
	return cfg, nil
}

// readFile loads the config file. An explicit path must exist; the default
// path under home is optional.
func readFile(path, home string) (*viper.Viper, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
		if home != "" {
			path = filepath.Join(home, strings.TrimPrefix(defaultConfigPath, "~/"))
		}
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config file: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(expanded)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}
	return v, nil
}

func resolveUnitDir(dir string, scope systemd.Scope) (string, error) {
	if dir == "" {
		dir = systemUnitDir
		if scope == systemd.ScopeUser {
			dir = userUnitDir
		}
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("expand unit dir: %w", err)
	}
	return expanded, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects settings the dashboard cannot run with.
func Validate(cfg Config) error {
	switch cfg.App.Scope {
	case systemd.ScopeSystem, systemd.ScopeUser, systemd.ScopeAll:
	default:
		return fmt.Errorf("unknown scope %d", cfg.App.Scope)
	}
	if cfg.App.Debounce < 0 {
		return fmt.Errorf("debounce must be >= 0 (got %s)", cfg.App.Debounce)
	}
	if cfg.App.Refresh < 0 {
		return fmt.Errorf("refresh must be >= 0 (got %s)", cfg.App.Refresh)
	}
	if cfg.App.LogLimit < 0 {
		return fmt.Errorf("log-limit must be >= 0 (got %d)", cfg.App.LogLimit)
	}
	if strings.TrimSpace(cfg.App.EditorEnv) == "" && strings.TrimSpace(cfg.App.Editor) == "" {
		return errors.New("an editor variable or fallback editor is required")
	}
	return nil
}
