// Package config loads the optional wpms configuration file and holds the
// settings shared by every wpms command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "wpms.conf"

// Default values for runner and installer configuration.
const (
	DefaultSource      = "./"
	DefaultShell       = "bash"
	DefaultTimeout     = 5 * time.Minute
	DefaultMaxOutput   = 1 << 20 // 1 MB
	DefaultInstallPath = "/usr/local/bin/wp"
	DefaultPharURL     = "https://raw.githubusercontent.com/wp-cli/builds/gh-pages/phar/wp-cli.phar"
)

// Config holds the migration settings. All fields are optional in a file;
// zero values fall back to defaults through the accessor methods.
type Config struct {
	Source      string   `yaml:"source" toml:"source"`           // [user@]host[:port]:path or a local path
	Destination string   `yaml:"destination" toml:"destination"` // required
	Exclude     []string `yaml:"exclude" toml:"exclude"`
	DryRun      bool     `yaml:"dry-run" toml:"dry-run"`
	Delete      bool     `yaml:"delete" toml:"delete"`
	SymUploads  string   `yaml:"sym-uploads" toml:"sym-uploads"`

	Shell        string `yaml:"shell" toml:"shell"`
	RawTimeout   string `yaml:"timeout" toml:"timeout"`       // e.g. "5m", "30s"
	RawMaxOutput int    `yaml:"max-output" toml:"max-output"` // bytes
	InstallPath  string `yaml:"install-path" toml:"install-path"`
	PharURL      string `yaml:"phar-url" toml:"phar-url"`
	RawSudo      *bool  `yaml:"sudo" toml:"sudo"`
	LogLevel     string `yaml:"log-level" toml:"log-level"`
	ReportDir    string `yaml:"report-dir" toml:"report-dir"`
}

// SourcePath returns the configured source or the current directory.
func (c *Config) SourcePath() string {
	if c.Source != "" {
		return c.Source
	}
	return DefaultSource
}

// ShellPath returns the configured shell or bash.
func (c *Config) ShellPath() string {
	if c.Shell != "" {
		return c.Shell
	}
	return DefaultShell
}

// Timeout returns the configured per-command timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// WPInstallPath returns where the wp binary is installed.
func (c *Config) WPInstallPath() string {
	if c.InstallPath != "" {
		return c.InstallPath
	}
	return DefaultInstallPath
}

// WPPharURL returns the WP-CLI download URL.
func (c *Config) WPPharURL() string {
	if c.PharURL != "" {
		return c.PharURL
	}
	return DefaultPharURL
}

// Sudo reports whether privileged install steps are prefixed with sudo.
func (c *Config) Sudo() bool {
	if c.RawSudo != nil {
		return *c.RawSudo
	}
	return true
}

// ReportPath returns the directory reports are written to.
func (c *Config) ReportPath() string {
	if c.ReportDir != "" {
		return c.ReportDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "wpms", "runs")
	}
	return filepath.Join(os.TempDir(), "wpms-runs")
}

// Validate checks the fields a migration cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Destination) == "" {
		errs = append(errs, errors.New("destination is required"))
	} else if sameSide(c.SourcePath(), c.Destination) {
		errs = append(errs, fmt.Errorf("source and destination are the same: %s", c.Destination))
	}
	if c.RawTimeout != "" {
		if d, err := time.ParseDuration(c.RawTimeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("invalid timeout %q", c.RawTimeout))
		}
	}
	return errors.Join(errs...)
}

func sameSide(a, b string) bool {
	sa, sb := ParseSide(a), ParseSide(b)
	return sa.SSH == sb.SSH && filepath.Clean(sa.Path) == filepath.Clean(sb.Path)
}

// SplitList splits an exclude value on commas and whitespace.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LoadResult holds the parsed config and where it came from.
type LoadResult struct {
	Config  *Config
	Path    string   // empty when no file was found
	Unknown []string // keys present in the file but not recognised
}

// Discover loads DefaultFileName from dir if it exists. A missing file
// yields an empty Config.
func Discover(dir string) (*LoadResult, error) {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: &Config{}}, nil
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	return Load(path)
}

// Load reads the config file at path. The format follows the extension:
// .yaml/.yml and .toml are structured; anything else is "key = value" lines.
func Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var (
		cfg     *Config
		unknown []string
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg = &Config{}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		cfg = &Config{}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		cfg, unknown, err = parseKeyValue(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return &LoadResult{Config: cfg, Path: path, Unknown: unknown}, nil
}
