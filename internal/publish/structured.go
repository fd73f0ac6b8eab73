// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type (
	jsonPublisher struct{}
	tomlPublisher struct{}
	yamlPublisher struct{}
)

func (jsonPublisher) Publish(w io.Writer, facts FactSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(facts.Map()); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (tomlPublisher) Publish(w io.Writer, facts FactSet) error {
	if err := toml.NewEncoder(w).Encode(facts.Map()); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}

// Publish emits a mapping node so keys keep FactSet order and every value
// stays a YAML string, even "true" or "8".
func (yamlPublisher) Publish(w io.Writer, facts FactSet) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	if len(facts) == 0 {
		doc.Style = yaml.FlowStyle
	}
	for _, f := range facts {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
