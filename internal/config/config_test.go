package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_KeyValue(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.conf", `
source = ./here
destination = deploy@example.com:/var/www/site
exclude = wp-content/cache wp-content/uploads/tmp
dry-run
delete = false
sym-uploads = /srv/uploads
timeout = 30s
`)

	res, err := Load(path)
	require.NoError(t, err)
	cfg := res.Config

	assert.Equal(t, path, res.Path)
	assert.Equal(t, "./here", cfg.Source)
	assert.Equal(t, "deploy@example.com:/var/www/site", cfg.Destination)
	assert.Equal(t, []string{"wp-content/cache", "wp-content/uploads/tmp"}, cfg.Exclude)
	assert.True(t, cfg.DryRun)
	assert.False(t, cfg.Delete)
	assert.Equal(t, "/srv/uploads", cfg.SymUploads)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Empty(t, res.Unknown)
}

func TestLoad_KeyValueUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.conf", "destination = ./there\ncolour = blue\n")

	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"colour"}, res.Unknown)
	assert.Equal(t, "./there", res.Config.Destination)
}

func TestLoad_KeyValueBadBoolean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.conf", "delete = maybe\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.yaml", `
source: ./src
destination: ./dst
exclude: [a, b]
delete: true
sudo: false
max-output: 2048
`)

	res, err := Load(path)
	require.NoError(t, err)
	cfg := res.Config
	assert.Equal(t, "./src", cfg.Source)
	assert.Equal(t, []string{"a", "b"}, cfg.Exclude)
	assert.True(t, cfg.Delete)
	assert.False(t, cfg.Sudo())
	assert.Equal(t, 2048, cfg.MaxOutputBytes())
}

func TestLoad_YAMLUnknownFieldRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.yml", "colour: blue\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.yaml", "")
	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, res.Config)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wpms.toml", `
source = "./src"
destination = "user@host:/srv/www"
dry-run = true
install-path = "/opt/bin/wp"
`)

	res, err := Load(path)
	require.NoError(t, err)
	cfg := res.Config
	assert.Equal(t, "user@host:/srv/www", cfg.Destination)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "/opt/bin/wp", cfg.WPInstallPath())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	res, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Equal(t, &Config{}, res.Config)

	writeFile(t, dir, DefaultFileName, "destination = ./there\n")
	res, err = Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), res.Path)
	assert.Equal(t, "./there", res.Config.Destination)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultSource, cfg.SourcePath())
	assert.Equal(t, DefaultShell, cfg.ShellPath())
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
	assert.Equal(t, DefaultMaxOutput, cfg.MaxOutputBytes())
	assert.Equal(t, DefaultInstallPath, cfg.WPInstallPath())
	assert.Equal(t, DefaultPharURL, cfg.WPPharURL())
	assert.True(t, cfg.Sudo())
	assert.NotEmpty(t, cfg.ReportPath())

	cfg.RawTimeout = "garbage"
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"ok", Config{Destination: "./there"}, ""},
		{"missing destination", Config{}, "destination is required"},
		{"same as default source", Config{Destination: "."}, "same"},
		{"same remote", Config{Source: "h:/a", Destination: "h:/a/"}, "same"},
		{"different hosts", Config{Source: "a:/www", Destination: "b:/www"}, ""},
		{"bad timeout", Config{Destination: "./there", RawTimeout: "-1s"}, "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a, b\tc"))
	assert.Nil(t, SplitList("  "))
}
