// Package configstore loads a schema.DatabaseSchema from YAML, the way
// sqldef's database.Config is parsed from a YAML config file (grounded
// on _examples/sqldef-sqldef/database/database.go's
// parseGeneratorConfigFromBytes).
package configstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vizql/sqlviz/schema"
)

// Load reads and parses a DatabaseSchema from the YAML file at path.
func Load(path string) (*schema.DatabaseSchema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configstore: reading %s: %w", path, err)
	}
	return Parse(buf)
}

// Parse parses a DatabaseSchema from raw YAML bytes.
func Parse(buf []byte) (*schema.DatabaseSchema, error) {
	var db schema.DatabaseSchema
	if err := yaml.Unmarshal(buf, &db); err != nil {
		return nil, fmt.Errorf("configstore: parsing schema: %w", err)
	}
	if err := validate(&db); err != nil {
		return nil, err
	}
	return &db, nil
}

// ParseString is Parse for a YAML document already in memory as a string.
func ParseString(yamlString string) (*schema.DatabaseSchema, error) {
	if yamlString == "" {
		return &schema.DatabaseSchema{}, nil
	}
	return Parse([]byte(yamlString))
}

func validate(db *schema.DatabaseSchema) error {
	seen := map[string]bool{}
	for _, t := range db.Tables {
		if t.Name == "" {
			return fmt.Errorf("configstore: table with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("configstore: duplicate table %q", t.Name)
		}
		seen[t.Name] = true
	}
	for _, fk := range db.ForeignKeys {
		if fk.Primary == "" || fk.Reference == "" {
			return fmt.Errorf("configstore: foreign key missing primary or reference side")
		}
	}
	return nil
}

// Dump renders db back to YAML, its inverse.
func Dump(db *schema.DatabaseSchema) ([]byte, error) {
	return yaml.Marshal(db)
}
