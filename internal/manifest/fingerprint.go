package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpage/internal/page"
	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Fingerprint returns the content fingerprint of an assembled page: page name
// and title act as the frontmatter part, the encoded blocks as the body.
func Fingerprint(p *page.Page) (string, error) {
	header, err := yaml.Marshal(map[string]string{"name": p.Name, "title": p.Title})
	if err != nil {
		return "", fmt.Errorf("marshal page header: %w", err)
	}
	body, err := json.Marshal(p.Blocks)
	if err != nil {
		return "", fmt.Errorf("marshal page blocks: %w", err)
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(header), "\n"), string(body)), nil
}
