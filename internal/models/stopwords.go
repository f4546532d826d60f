// stopwords.go
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StopwordFile matches the optional deployment-level stopword YAML file. Words
// listed here are merged into the per-call extra stopword set, so operators can
// suppress survey-specific boilerplate terms without a rebuild.
type StopwordFile struct {
	ExtraStopwords []string `yaml:"extra_stopwords"`
}

// LoadStopwords reads and parses an extra-stopwords YAML file.
func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopword file: %w", err)
	}

	var file StopwordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stopword YAML: %w", err)
	}

	return file.ExtraStopwords, nil
}
