package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/parleyhq/parley-backend/internal/repository"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Render substitutes every {name} occurrence in content with the matching
// param value. Unresolved placeholders are left as-is; Validate catches them
// at template save time, not at dispatch.
func Render(content string, params []repository.PromptParam) string {
	for _, p := range params {
		content = strings.ReplaceAll(content, "{"+p.Name+"}", p.Value)
	}
	return content
}

// Validate confirms every placeholder referenced in content has a matching
// param. Called on template create and update.
func Validate(content string, params []repository.PromptParam) error {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.Name] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if !known[name] && !seen[name] {
			missing = append(missing, name)
			seen[name] = true
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("placeholders without params: %s", strings.Join(missing, ", "))
	}
	return nil
}
