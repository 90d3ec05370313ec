// Package config loads swupfix settings.
//
// Values come from, in increasing priority:
//  1. built-in defaults (the stock theme's section list and swup hook)
//  2. swupfix.yaml in the working directory or next to the binary
//  3. SWUPFIX_* environment variables (SWUPFIX_SECTIONS_DIR, SWUPFIX_LOG_LEVEL, ...)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	SectionsDir string    `mapstructure:"sections_dir" yaml:"sections_dir"`
	Suffix      string    `mapstructure:"suffix" yaml:"suffix"`
	Files       []string  `mapstructure:"files" yaml:"files"`
	Event       string    `mapstructure:"event" yaml:"event"`
	Register    string    `mapstructure:"register" yaml:"register"`
	Hook        string    `mapstructure:"hook" yaml:"hook"`
	TidyIndent  bool      `mapstructure:"tidy_indent" yaml:"tidy_indent"`
	Log         LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// DefaultFiles lists the sections that still register their own
// swup:contentReplaced listeners. Header, product and footer already use
// the hook and are left out.
var DefaultFiles = []string{
	"404.liquid",
	"before-after.liquid",
	"blog.liquid",
	"collection.liquid",
	"collections.liquid",
	"contact-form.liquid",
	"faq.liquid",
	"features-grid.liquid",
	"horizontal-scroll.liquid",
	"map.liquid",
	"newsletter.liquid",
	"page.liquid",
	"related-products.liquid",
	"search.liquid",
	"shoppable-videos.liquid",
	"stacking-cards.liquid",
	"team.liquid",
	"testimonials.liquid",
	"text-reveal.liquid",
	"timeline.liquid",
	"video.liquid",
	"hero-orbit.liquid",
}

const envPrefix = "SWUPFIX"

// Load reads configuration. An empty path searches for swupfix.yaml in the
// working directory and in exeDir; a missing file is not an error. An
// explicit path must exist.
func Load(fs afero.Fs, path, exeDir string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("swupfix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if exeDir != "" {
			v.AddConfigPath(exeDir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, exeDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, exeDir string) {
	v.SetDefault("sections_dir", DefaultSectionsDir(exeDir))
	v.SetDefault("suffix", ".liquid")
	v.SetDefault("files", DefaultFiles)
	v.SetDefault("event", "swup:contentReplaced")
	v.SetDefault("register", "window.addEventListener")
	v.SetDefault("hook", "window.onSwupContentReplaced")
	v.SetDefault("tidy_indent", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// DefaultSectionsDir is the sections directory one level above exeDir.
func DefaultSectionsDir(exeDir string) string {
	if exeDir == "" {
		return "sections"
	}
	return filepath.Join(filepath.Dir(exeDir), "sections")
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved. It returns "" if it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Validate checks for settings the rewrite cannot run without.
func (c *Config) Validate() error {
	if len(c.Files) == 0 {
		return errors.New("files must not be empty")
	}
	for _, f := range c.Files {
		if f == "" || filepath.Base(f) != f {
			return fmt.Errorf("files: %q must be a plain file name", f)
		}
	}
	if c.Event == "" {
		return errors.New("event must not be empty")
	}
	if c.Register == "" {
		return errors.New("register must not be empty")
	}
	if c.Hook == "" {
		return errors.New("hook must not be empty")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
