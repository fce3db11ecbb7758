package models

type SeedPrice struct {
	Difficulty   string `yaml:"difficulty" json:"difficulty"`
	CrystalValue int    `yaml:"crystal_value" json:"crystal_value"`
}

type SeedBoss struct {
	Name   string      `yaml:"name" json:"name"`
	Prices []SeedPrice `yaml:"prices" json:"prices"`
}

// RegistrySeedFile is the on-disk layout of boss_registry.yaml.
type RegistrySeedFile struct {
	Comment string     `yaml:"_comment" json:"_comment"`
	Bosses  []SeedBoss `yaml:"bosses" json:"bosses"`
}
