package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fardannozami/quest-tracker/internal/domain"
)

type catalogFile struct {
	Quests []string `yaml:"quests"`
}

// LoadCatalog reads the quest list from a YAML file of the form:
//
//	quests:
//	  - Check-in
//	  - Infernal
func LoadCatalog(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quests file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing quests file %s: %w", path, err)
	}

	c, err := domain.NewCatalog(f.Quests)
	if err != nil {
		return nil, fmt.Errorf("quests file %s: %w", path, err)
	}
	return c, nil
}
