package config

import (
	stdErrors "errors"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const exampleConfig = `# SiteBuilder configuration.
# Values support ${ENV_VAR} expansion; SITEBUILDER_* variables and
# command-line flags take precedence over this file.

paths:
  assets: public
  tasks: tasks
  output: dist
  css_vendor: node_modules/github-markdown-css/github-markdown-light.css

build:
  delay: 0s
  # report: dist-report.json
  # metrics_file: metrics/sitebuilder.prom
  verify_links: false

watch:
  debounce: 500ms
  rebuild_every: 0s

markdown:
  heading_ids: true
  alerts: true
  unsafe_html: true

site:
  title: GitHub Actions Workshop
  copyright: 2025 GitHub Actions Workshop
  index_title: Workshop Tasks
  index_intro: Follow these tasks in order to learn GitHub Actions step by step.
  nav:
    - { label: Home, href: index.html }
    - { label: About, href: about.html }
    - { label: Tasks, href: tasks.html }
    - { label: Demo, href: demo.html }
    - { label: Snake, href: snake.html }

logging:
  level: info
  format: text
`

// Init writes an example configuration file to path. An existing file is
// only replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	} else if err != nil && !stdErrors.Is(err, os.ErrNotExist) {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot stat configuration file").
			WithContext("path", path).
			Build()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
