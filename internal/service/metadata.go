package service

import (
	"fmt"
	"log"
	"os"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/models"

	"gopkg.in/yaml.v3"
)

// LoadRegistrySeed loads initial crystal prices from a YAML file. Bosses or
// difficulties the codec cannot encode are rejected so the registry never
// holds a pair that could not be stored in a ConfigString.
func LoadRegistrySeed(path string) ([]models.RegistryEntry, error) {
	if path == "" {
		path = "boss_registry.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file models.RegistrySeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var out []models.RegistryEntry
	for _, b := range file.Bosses {
		for _, p := range b.Prices {
			if _, err := bosscode.EncodeBossCode(b.Name, p.Difficulty); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if p.CrystalValue < 0 {
				return nil, fmt.Errorf("%s: negative crystal value for %s %s", path, p.Difficulty, b.Name)
			}
			out = append(out, models.RegistryEntry{
				BossName:     b.Name,
				Difficulty:   p.Difficulty,
				CrystalValue: p.CrystalValue,
			})
		}
	}

	log.Printf("Loaded registry seed: %d bosses, %d priced difficulties", len(file.Bosses), len(out))
	return out, nil
}
