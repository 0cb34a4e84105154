// Package prompts holds the embedded prompt templates used by the AI repair strategy.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Template keys in repair.json.
const (
	KeyFixXLIFF           = "fix-xliff"
	KeyFixXLIFFWithErrors = "fix-xliff-with-errors"
)

// contentPlaceholder must appear in every template.
const contentPlaceholder = "{{.Content}}"

//go:embed repair.json
var repairTemplates []byte

var (
	loadOnce  sync.Once
	templates map[string]string
	loadErr   error
)

// Get returns the repair template stored under key.
func Get(key string) (string, error) {
	loadOnce.Do(func() {
		templates, loadErr = Parse(repairTemplates)
	})
	if loadErr != nil {
		return "", loadErr
	}

	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in repair.json", key)
	}
	return template, nil
}

// Parse decodes a JSON object of key to template and checks that each template
// is non-empty and carries the content placeholder.
func Parse(data []byte) (map[string]string, error) {
	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no prompt templates defined")
	}

	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !strings.Contains(parsed[key], contentPlaceholder) {
			return nil, fmt.Errorf("prompt %q is missing %s", key, contentPlaceholder)
		}
	}
	return parsed, nil
}

// Format replaces {{.Key}} placeholders with values from data in a single pass,
// so placeholder-like text inside a value is left alone.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
