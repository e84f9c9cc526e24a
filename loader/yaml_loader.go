package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/schema"
	"gopkg.in/yaml.v3"
)

type yamlSchema struct {
	Name         string      `yaml:"name"`
	PhysicalPath string      `yaml:"physicalPath"`
	Partitions   []string    `yaml:"partitions"`
	Fields       []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name          string `yaml:"name"`
	LogicalFormat string `yaml:"logicalFormat"`
}

// LoadSchema reads a schema definition file. JSON files load as well since
// JSON is valid YAML
func LoadSchema(filename string) (schema.Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (schema.Definition, error) {
	var ys yamlSchema
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return schema.Definition{}, fmt.Errorf("unmarshalling schema: %w", err)
	}

	def := schema.Definition{
		Name:         ys.Name,
		PhysicalPath: ys.PhysicalPath,
		Partitions:   ys.Partitions,
	}
	for _, f := range ys.Fields {
		def.Fields = append(def.Fields, schema.Field{
			Name:          f.Name,
			LogicalFormat: f.LogicalFormat,
		})
	}

	return def, nil
}

// LoadCatalog reads a catalog file: a mapping of field name to a list of
// scalar values
func LoadCatalog(filename string) (catalog.Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (catalog.Catalog, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshalling catalog: %w", err)
	}

	cat := make(catalog.Catalog, len(raw))
	for field, node := range raw {
		values, err := nodeValues(&node)
		if err != nil {
			return nil, fmt.Errorf("catalog field %q: %w", field, err)
		}
		cat[field] = values
	}
	return cat, nil
}

// ParseFixedValues parses the inline fixed values given on the command line.
// Single quotes are accepted in place of double quotes
func ParseFixedValues(text string) (catalog.Catalog, error) {
	if strings.TrimSpace(text) == "" {
		return catalog.Catalog{}, nil
	}
	cat, err := ParseCatalog([]byte(strings.ReplaceAll(text, "'", `"`)))
	if err != nil {
		return nil, fmt.Errorf("parsing fixed values: %w", err)
	}
	return cat, nil
}

// nodeValues accepts a sequence of scalars, or a single scalar taken as a
// one-element list
func nodeValues(n *yaml.Node) ([]any, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		values := make([]any, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := scalarValue(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			values = append(values, v)
		}
		return values, nil
	case yaml.ScalarNode:
		v, err := scalarValue(n)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("line %d: expected a list of values", n.Line)
	}
}

// scalarValue converts a scalar node into a catalog token. Non-integer
// numbers keep their literal text so decimals stay exact
func scalarValue(n *yaml.Node) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: nested values are not supported", n.Line)
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// out of int64 range: keep the digits
			return catalog.Number(n.Value), nil
		}
		return i, nil
	case "!!float":
		return catalog.Number(n.Value), nil
	default:
		return n.Value, nil
	}
}
