package schema

// Definition is a table schema as declared in a schema file.
type Definition struct {
	Name         string   `yaml:"name" json:"name"`
	PhysicalPath string   `yaml:"physicalPath" json:"physicalPath"`
	Partitions   []string `yaml:"partitions,omitempty" json:"partitions,omitempty"`
	Fields       []Field  `yaml:"fields" json:"fields"`
}

type Field struct {
	Name          string `yaml:"name" json:"name"`
	LogicalFormat string `yaml:"logicalFormat" json:"logicalFormat"`
}

// FieldNames returns the declared field names in order, duplicates included.
func (d Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	return names
}

// HasField reports whether any field is declared with name.
func (d Definition) HasField(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
