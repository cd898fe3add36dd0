package config

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether f is a terminal that prompts can be shown on.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShouldPrompt reports whether configuration must be collected
// interactively: no flags were given, no file was found, and stdin is a
// terminal.
func ShouldPrompt(flagsGiven bool, res *LoadResult, stdin *os.File) bool {
	if flagsGiven || (res != nil && res.Path != "") {
		return false
	}
	return Interactive(stdin)
}

// Prompt fills cfg through interactive forms. Existing values are offered
// as defaults.
func Prompt(cfg *Config) error {
	source := cfg.Source
	exclude := strings.Join(cfg.Exclude, " ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source directory").
				Description("<user@host:port>:path/to/source, default ./").
				Value(&source),
			huh.NewInput().
				Title("Destination directory").
				Description("<user@host:port>:path/to/destination").
				Value(&cfg.Destination).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("destination is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Directories to exclude").
				Description("Separated by whitespace, default none").
				Value(&exclude),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Dry run?").
				Description("Run the operation without transferring files").
				Value(&cfg.DryRun),
			huh.NewConfirm().
				Title("Delete extra files?").
				Description("Delete files in the destination that are not in the source").
				Value(&cfg.Delete),
			huh.NewInput().
				Title("Symlink uploads").
				Description("Point the destination uploads folder elsewhere, default none").
				Value(&cfg.SymUploads),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Source = strings.TrimSpace(source)
	cfg.Destination = strings.TrimSpace(cfg.Destination)
	cfg.Exclude = SplitList(exclude)
	return nil
}
