package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vuedoc/internal/composition"
	"vuedoc/internal/crawler"
	"vuedoc/internal/entry"
	"vuedoc/internal/resolver"
	"vuedoc/internal/script"
	"vuedoc/internal/value"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "vuedoc.yaml"

type Config struct {
	Project struct {
		Root         string            `yaml:"root"`
		Include      []string          `yaml:"include"`
		ExcludeDirs  []string          `yaml:"exclude_dirs"`
		ExcludeFiles []string          `yaml:"exclude_files"`
		Aliases      map[string]string `yaml:"aliases"` // import prefix -> directory under root
	} `yaml:"project"`
	Extract struct {
		DefaultVisibility string `yaml:"default_visibility"`
		// IgnoredVisibilities left unset hides protected and private
		// members; an empty list keeps everything.
		IgnoredVisibilities []string          `yaml:"ignored_visibilities"`
		Features            []string          `yaml:"features"`
		FrameworkModules    []string          `yaml:"framework_modules"`
		Composition         []CompositionRule `yaml:"composition"`
		Jobs                int               `yaml:"jobs"`
	} `yaml:"extract"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"` // markdown or json
	} `yaml:"output"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// CompositionRule registers an extra composition function, typically a
// project composable such as useStore.
type CompositionRule struct {
	Name               string   `yaml:"name"`
	Feature            string   `yaml:"feature"`
	ValueIndex         *int     `yaml:"value_index"`
	TypeParameterIndex *int     `yaml:"type_parameter_index"`
	ReturningType      string   `yaml:"returning_type"`
	IdentifierSuffixes []string `yaml:"identifier_suffixes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Project.Root == "" {
		c.Project.Root = "."
	}
	if len(c.Project.Include) == 0 {
		c.Project.Include = crawler.DefaultInclude
	}
	if c.Project.ExcludeDirs == nil {
		c.Project.ExcludeDirs = crawler.DefaultExcludeDirs
	}
	if c.Extract.DefaultVisibility == "" {
		c.Extract.DefaultVisibility = string(entry.Public)
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = ".vuedoc/vuedoc.db"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "docs"
	}
	if c.Output.Format == "" {
		c.Output.Format = "markdown"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate()
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	cfg = &Config{}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VUEDOC_ROOT"); v != "" {
		c.Project.Root = v
	}
	if v := os.Getenv("VUEDOC_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("VUEDOC_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("VUEDOC_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("VUEDOC_DEFAULT_VISIBILITY"); v != "" {
		c.Extract.DefaultVisibility = v
	}
	if v := os.Getenv("VUEDOC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VUEDOC_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid VUEDOC_JOBS %q: %w", v, err)
		}
		c.Extract.Jobs = n
	}
	if v := os.Getenv("VUEDOC_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid VUEDOC_DEBOUNCE %q: %w", v, err)
		}
		c.Watch.Debounce = d
	}
	return nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if _, err := entry.ParseVisibility(c.Extract.DefaultVisibility); err != nil {
		errs = append(errs, fmt.Errorf("extract.default_visibility: %w", err))
	}
	for _, v := range c.Extract.IgnoredVisibilities {
		if _, err := entry.ParseVisibility(v); err != nil {
			errs = append(errs, fmt.Errorf("extract.ignored_visibilities: %w", err))
		}
	}
	for _, f := range c.Extract.Features {
		if _, err := entry.ParseKind(f); err != nil {
			errs = append(errs, fmt.Errorf("extract.features: %w", err))
		}
	}
	for i, r := range c.Extract.Composition {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("extract.composition[%d]: missing name", i))
		}
		if _, err := composition.ParseFeature(r.Feature); err != nil {
			errs = append(errs, fmt.Errorf("extract.composition[%d]: %w", i, err))
		}
	}
	switch c.Output.Format {
	case "markdown", "md", "json":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level)))
	return level, err
}

// RootDir returns the absolute project root.
func (c *Config) RootDir() (string, error) {
	return filepath.Abs(c.Project.Root)
}

// Filter compiles the crawl patterns.
func (c *Config) Filter() (*crawler.Filter, error) {
	return crawler.NewFilter(c.Project.Include, c.Project.ExcludeDirs, c.Project.ExcludeFiles)
}

// Registry returns the default Vue registry extended with the configured
// rules.
func (c *Config) Registry() (*composition.Registry, error) {
	reg := composition.DefaultRegistry().Clone()
	for _, r := range c.Extract.Composition {
		feature, err := composition.ParseFeature(r.Feature)
		if err != nil {
			return nil, err
		}
		rule := composition.Rule{
			Name:               r.Name,
			Feature:            feature,
			ValueIndex:         r.ValueIndex,
			TypeParameterIndex: r.TypeParameterIndex,
			IdentifierSuffixes: r.IdentifierSuffixes,
		}
		if r.ReturningType != "" {
			rule.ReturningType = value.T(r.ReturningType)
		}
		reg.Add(rule)
	}
	return reg, nil
}

// ScriptOptions converts the configuration into engine options resolving
// imports from the project root.
func (c *Config) ScriptOptions(logger *slog.Logger) (script.Options, error) {
	root, err := c.RootDir()
	if err != nil {
		return script.Options{}, err
	}
	reg, err := c.Registry()
	if err != nil {
		return script.Options{}, err
	}
	def, err := entry.ParseVisibility(c.Extract.DefaultVisibility)
	if err != nil {
		return script.Options{}, err
	}

	opts := script.Options{
		Registry:          reg,
		Resolver:          resolver.NewDefaultChain(root, c.Project.Aliases),
		Logger:            logger,
		DefaultVisibility: def,
	}
	if c.Extract.IgnoredVisibilities != nil {
		opts.IgnoredVisibilities = []entry.Visibility{}
		for _, v := range c.Extract.IgnoredVisibilities {
			vis, err := entry.ParseVisibility(v)
			if err != nil {
				return script.Options{}, err
			}
			opts.IgnoredVisibilities = append(opts.IgnoredVisibilities, vis)
		}
	}
	for _, f := range c.Extract.Features {
		kind, err := entry.ParseKind(f)
		if err != nil {
			return script.Options{}, err
		}
		opts.Features = append(opts.Features, kind)
	}
	if len(c.Extract.FrameworkModules) > 0 {
		opts.FrameworkModules = append(append([]string(nil), composition.FrameworkModules...), c.Extract.FrameworkModules...)
	}
	return opts, nil
}
