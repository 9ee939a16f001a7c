package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate rejects records the build cannot run with. Every failure is a
// CategoryValidation error, which the CLI maps to exit status 2.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.Output) == "" {
		return errors.ValidationError("output directory must not be empty").Build()
	}
	if strings.TrimSpace(c.Paths.Assets) == "" {
		return errors.ValidationError("assets directory must not be empty").Build()
	}
	if strings.TrimSpace(c.Paths.Tasks) == "" {
		return errors.ValidationError("tasks directory must not be empty").Build()
	}
	if c.Build.Delay < 0 {
		return errors.ValidationError("delay must not be negative").
			WithContext("delay", c.Build.Delay.String()).
			Build()
	}
	if c.Watch.Debounce < 0 {
		return errors.ValidationError("watch debounce must not be negative").
			WithContext("debounce", c.Watch.Debounce.String()).
			Build()
	}
	if c.Watch.RebuildEvery < 0 {
		return errors.ValidationError("watch rebuild interval must not be negative").
			WithContext("rebuild_every", c.Watch.RebuildEvery.String()).
			Build()
	}

	out, err := filepath.Abs(c.Paths.Output)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "cannot resolve output directory").
			WithContext("path", c.Paths.Output).
			Build()
	}
	inputs := map[string]string{"assets": c.Paths.Assets, "tasks": c.Paths.Tasks}
	for _, name := range []string{"assets", "tasks"} {
		in, err := filepath.Abs(inputs[name])
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "cannot resolve "+name+" directory").
				WithContext("path", inputs[name]).
				Build()
		}
		// The output tree is wiped on every build, so it must not hold an input.
		if within(out, in) {
			return errors.ValidationError("output directory must not contain the "+name+" directory").
				WithContext("path", c.Paths.Output).
				WithContext(name, inputs[name]).
				Build()
		}
		// Mirroring the asset tree into its own subdirectory never terminates.
		if name == "assets" && within(in, out) {
			return errors.ValidationError("output directory must not be inside the assets directory").
				WithContext("path", c.Paths.Output).
				WithContext(name, inputs[name]).
				Build()
		}
	}
	return nil
}

// within reports whether path equals root or lies beneath it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
