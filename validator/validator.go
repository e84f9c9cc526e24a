package validator

import (
	"errors"
	"fmt"

	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) add(e ValidationError) {
	switch e.Severity {
	case "error":
		r.Errors = append(r.Errors, e)
	case "warning":
		r.Warnings = append(r.Warnings, e)
	default:
		r.Info = append(r.Info, e)
	}
}

// ValidateDefinition checks a schema definition, the partition keys it
// would be written with and an optional catalog, without generating data
func ValidateDefinition(def schema.Definition, partitions []string, cat catalog.Catalog) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	validateHeader(def, result)
	types := validateFields(def, result)
	validatePartitions(def, partitions, types, result)
	validateCatalog(def, cat, types, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateHeader(def schema.Definition, result *ValidationResult) {
	if def.Name == "" {
		result.add(ValidationError{
			Type:     "schema_name",
			Message:  "Schema name is empty; output paths built from it will be incomplete",
			Severity: "warning",
		})
	}
	if def.PhysicalPath == "" {
		result.add(ValidationError{
			Type:     "physical_path",
			Table:    def.Name,
			Message:  "physicalPath is empty; a destination path or directory must be given",
			Severity: "warning",
		})
	}
	if len(def.Fields) == 0 {
		result.add(ValidationError{
			Type:     "no_fields",
			Table:    def.Name,
			Message:  fmt.Sprintf("Schema '%s' has no fields", def.Name),
			Severity: "warning",
		})
	}
}

// validateFields returns the physical type of every field that will be
// generated
func validateFields(def schema.Definition, result *ValidationResult) map[string]schema.PhysicalType {
	types := map[string]schema.PhysicalType{}
	seen := map[string]bool{}

	for _, f := range def.Fields {
		if f.Name == "" {
			result.add(ValidationError{
				Type:     "field_name",
				Table:    def.Name,
				Message:  "Field name cannot be empty",
				Severity: "error",
			})
		} else if err := validateFieldName(f.Name); err != nil {
			result.add(ValidationError{
				Type:     "field_name",
				Table:    def.Name,
				Column:   f.Name,
				Message:  err.Error(),
				Severity: "warning",
			})
		}

		if seen[f.Name] {
			result.add(ValidationError{
				Type:     "duplicate_field",
				Table:    def.Name,
				Column:   f.Name,
				Message:  fmt.Sprintf("Field '%s' is declared more than once; the last declaration wins", f.Name),
				Severity: "warning",
			})
		}
		seen[f.Name] = true

		format, err := schema.ParseFormat(f.LogicalFormat)
		if err != nil {
			delete(types, f.Name)
			result.add(ValidationError{
				Type:     "malformed_format",
				Table:    def.Name,
				Column:   f.Name,
				Message:  err.Error(),
				Severity: "error",
			})
			continue
		}
		pt, ok := format.PhysicalType()
		if !ok {
			delete(types, f.Name)
			result.add(ValidationError{
				Type:     "unrecognized_format",
				Table:    def.Name,
				Column:   f.Name,
				Message:  fmt.Sprintf("Unrecognized logicalFormat '%s'; the field will be skipped", f.LogicalFormat),
				Severity: "warning",
			})
			continue
		}
		types[f.Name] = pt
	}

	return types
}

// validateFieldName flags names that do not survive as a partition
// directory or a CSV header unchanged
func validateFieldName(name string) error {
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("field name '%s' contains character '%c'", name, char)
		}
	}
	return nil
}

func validatePartitions(def schema.Definition, partitions []string, types map[string]schema.PhysicalType, result *ValidationResult) {
	seen := map[string]bool{}
	for _, p := range partitions {
		if seen[p] {
			result.add(ValidationError{
				Type:     "partition_duplicate",
				Table:    def.Name,
				Column:   p,
				Message:  fmt.Sprintf("Partition column '%s' is listed more than once", p),
				Severity: "error",
			})
			continue
		}
		seen[p] = true
		if _, ok := types[p]; ok {
			continue
		}
		msg := fmt.Sprintf("Partition column '%s' is not a field of the schema", p)
		if def.HasField(p) {
			msg = fmt.Sprintf("Partition column '%s' is not generated because its format is not usable", p)
		}
		result.add(ValidationError{
			Type:     "partition_column",
			Table:    def.Name,
			Column:   p,
			Message:  msg,
			Severity: "error",
		})
	}
	if len(seen) > 0 && len(types) > 0 && allPartitioned(types, seen) {
		result.add(ValidationError{
			Type:     "partition_all_columns",
			Table:    def.Name,
			Message:  "Every generated field is a partition key, no data would be left for the Parquet files",
			Severity: "error",
		})
	}
}

func allPartitioned(types map[string]schema.PhysicalType, partitions map[string]bool) bool {
	for name := range types {
		if !partitions[name] {
			return false
		}
	}
	return true
}

func validateCatalog(def schema.Definition, cat catalog.Catalog, types map[string]schema.PhysicalType, result *ValidationResult) {
	if len(cat) == 0 {
		return
	}

	for _, name := range cat.Fields() {
		values, ok := cat.Values(name)
		if !ok {
			continue
		}
		if !def.HasField(name) {
			result.add(ValidationError{
				Type:     "catalog_unused",
				Table:    def.Name,
				Column:   name,
				Message:  fmt.Sprintf("Catalog field '%s' is not in the schema and will be ignored", name),
				Severity: "info",
			})
			continue
		}
		pt, ok := types[name]
		if !ok {
			continue
		}
		for row, v := range values {
			if _, err := table.Coerce(v, pt); err != nil {
				castErr := &table.CastError{Column: name, Row: row, Value: v, Type: pt, Err: err}
				result.add(ValidationError{
					Type:     "catalog_value",
					Table:    def.Name,
					Column:   name,
					Message:  castErr.Error(),
					Severity: "error",
				})
			}
		}
	}

	if n := cat.RowCount(); n > 0 {
		result.add(ValidationError{
			Type:     "catalog_rows",
			Table:    def.Name,
			Message:  fmt.Sprintf("Catalog has %d rows in its longest field", n),
			Severity: "info",
		})
	}
}

// Err returns nil when the result is valid, otherwise an error joining
// every error message
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = errors.New(e.Message)
	}
	return errors.Join(errs...)
}
