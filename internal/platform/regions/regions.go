package regions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table maps a region to the maximum number of volunteer groups a student
// may fill there. Read-only after Load.
type Table struct {
	Default int            `yaml:"default"`
	Regions map[string]int `yaml:"regions"`
}

// Published slot counts for program-group based provinces. Overridable via
// a YAML file with the same shape.
var builtin = Table{
	Default: 45,
	Regions: map[string]int{
		"北京": 30,
		"天津": 50,
		"上海": 24,
		"海南": 24,
		"江苏": 40,
		"福建": 40,
		"广东": 45,
		"湖南": 45,
		"湖北": 45,
	},
}

func Load(path string) (*Table, error) {
	t := Table{
		Default: builtin.Default,
		Regions: make(map[string]int, len(builtin.Regions)),
	}
	for k, v := range builtin.Regions {
		t.Regions[k] = v
	}
	if path == "" {
		return &t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region table %s: %w", path, err)
	}
	var override Table
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse region table %s: %w", path, err)
	}
	if override.Default > 0 {
		t.Default = override.Default
	}
	for k, v := range override.Regions {
		t.Regions[k] = v
	}
	return &t, nil
}

// Max returns the volunteer-group cap for a region, falling back to the
// table default for regions without an explicit entry.
func (t *Table) Max(region string) int {
	if t == nil {
		return 0
	}
	if v, ok := t.Regions[region]; ok {
		return v
	}
	return t.Default
}
