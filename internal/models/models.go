package models

import "time"

// BossIdentity is a boss paired with one of its difficulties.
type BossIdentity struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

// BossLoadoutEntry is one boss in a character's weekly loadout.
type BossLoadoutEntry struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	PartySize  int    `json:"partySize"`
	Price      int    `json:"price"`
}

type RegistryEntry struct {
	ID           int64     `json:"id"`
	BossName     string    `json:"boss_name"`
	Difficulty   string    `json:"difficulty"`
	CrystalValue int       `json:"crystal_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegistryEnvelope wraps a registry snapshot on the wire.
type RegistryEnvelope struct {
	Success bool            `json:"success"`
	Data    []RegistryEntry `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type CrystalSnapshot struct {
	BossName     string    `json:"boss_name"`
	Difficulty   string    `json:"difficulty"`
	CrystalValue int       `json:"crystal_value"`
	ObservedAt   time.Time `json:"observed_at"`
}

type Character struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BossConfig string    `json:"boss_config"`
	UpdatedAt  time.Time `json:"updated_at"`
}
