package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// parseKeyValue reads "key = value" lines. A bare "dry-run" or "delete"
// line enables the flag. Unrecognised keys are returned, not rejected.
func parseKeyValue(data []byte) (*Config, []string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:          true,
		IgnoreInlineComment:       true,
		UnescapeValueDoubleQuotes: true,
	}, data)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	var unknown []string
	for _, key := range f.Section(ini.DefaultSection).Keys() {
		name := strings.ToLower(strings.ReplaceAll(key.Name(), "_", "-"))
		value := strings.TrimSpace(key.String())

		switch name {
		case "source":
			cfg.Source = value
		case "destination":
			cfg.Destination = value
		case "exclude":
			cfg.Exclude = SplitList(value)
		case "dry-run":
			cfg.DryRun, err = parseFlag(name, value)
		case "delete":
			cfg.Delete, err = parseFlag(name, value)
		case "sym-uploads":
			cfg.SymUploads = value
		case "shell":
			cfg.Shell = value
		case "timeout":
			cfg.RawTimeout = value
		case "max-output":
			cfg.RawMaxOutput, err = strconv.Atoi(value)
			if err != nil {
				err = fmt.Errorf("max-output: %w", err)
			}
		case "install-path":
			cfg.InstallPath = value
		case "phar-url":
			cfg.PharURL = value
		case "sudo":
			var b bool
			b, err = parseFlag(name, value)
			cfg.RawSudo = &b
		case "log-level":
			cfg.LogLevel = value
		case "report-dir":
			cfg.ReportDir = value
		default:
			unknown = append(unknown, key.Name())
		}
		if err != nil {
			return nil, nil, err
		}
	}

	for _, sec := range f.Sections() {
		if sec.Name() != ini.DefaultSection {
			unknown = append(unknown, "["+sec.Name()+"]")
		}
	}
	return cfg, unknown, nil
}

// parseFlag treats a key with no value as true.
func parseFlag(name, value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		switch strings.ToLower(value) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
		return false, fmt.Errorf("%s: invalid boolean %q", name, value)
	}
	return b, nil
}
