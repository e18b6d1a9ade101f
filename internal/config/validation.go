package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
)

// Validate reports every problem in c as a single config error.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Metadata.Path) == "" {
		problems = append(problems, "metadata.path is required")
	}
	for i, p := range c.Pages {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, fmt.Sprintf("pages[%d] is empty", i))
		}
	}
	if c.Watch.Interval < 0 {
		problems = append(problems, "watch.interval must not be negative")
	}
	for _, p := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(p) {
			problems = append(problems, fmt.Sprintf("watch.ignore pattern %q is invalid", p))
		}
	}
	if c.Notify.Subject != "" && c.Notify.NATSURL == "" {
		problems = append(problems, "notify.subject requires notify.nats_url")
	}
	if len(problems) == 0 {
		return nil
	}
	return ferrors.ConfigError("configuration validation failed").
		WithContext("problems", strings.Join(problems, "; ")).
		Build()
}
