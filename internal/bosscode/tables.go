package bosscode

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// CodeEntry pairs a display name with its compact code.
type CodeEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CodeTable lists both enumerations in their canonical order.
type CodeTable struct {
	Bosses       []CodeEntry `json:"bosses"`
	Difficulties []CodeEntry `json:"difficulties"`
}

// Codes are persisted inside stored ConfigStrings. Never reassign an
// existing code to another name; append new bosses instead.
var bossTable = []CodeEntry{
	{"Zakum", "ZK"},
	{"Hilla", "HL"},
	{"Pink Bean", "PB"},
	{"Cygnus", "CY"},
	{"Pierre", "PR"},
	{"Von Bon", "VB"},
	{"Crimson Queen", "CQ"},
	{"Vellum", "VL"},
	{"Magnus", "MG"},
	{"Papulatus", "PP"},
	{"Akechi Mitsuhide", "AM"},
	{"Princess No", "PN"},
	{"Lotus", "LT"},
	{"Damien", "DM"},
	{"Guardian Angel Slime", "GS"},
	{"Lucid", "LC"},
	{"Will", "WL"},
	{"Gloom", "GL"},
	{"Verus Hilla", "VH"},
	{"Darknell", "DN"},
	{"Chosen Seren", "SR"},
	{"Kalos the Guardian", "KL"},
	{"Kaling", "KG"},
	{"Black Mage", "BM"},
}

var difficultyTable = []CodeEntry{
	{"Easy", "E"},
	{"Normal", "N"},
	{"Hard", "H"},
	{"Chaos", "C"},
	{"Extreme", "X"},
}

var (
	bossCodes       = forward(bossTable)
	bossNames       = invert(bossCodes)
	difficultyCodes = forward(difficultyTable)
	difficultyNames = invert(difficultyCodes)

	foldedBosses       = foldIndex(bossTable)
	foldedDifficulties = foldIndex(difficultyTable)
)

func forward(table []CodeEntry) map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		if _, dup := m[e.Name]; dup {
			panic(fmt.Sprintf("bosscode: duplicate name %q", e.Name))
		}
		m[e.Name] = e.Code
	}
	return m
}

// invert derives code -> name; a repeated code would break decoding, so it
// fails package initialization.
func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for name, code := range m {
		if prev, dup := out[code]; dup {
			panic(fmt.Sprintf("bosscode: code %q assigned to both %q and %q", code, prev, name))
		}
		out[code] = name
	}
	return out
}

func foldIndex(table []CodeEntry) map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		m[fold(e.Name)] = e.Name
	}
	return m
}

func fold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// BossNames returns the known boss names in table order.
func BossNames() []string {
	out := make([]string, len(bossTable))
	for i, e := range bossTable {
		out[i] = e.Name
	}
	return out
}

// Difficulties returns the known difficulty names from easiest to hardest.
func Difficulties() []string {
	out := make([]string, len(difficultyTable))
	for i, e := range difficultyTable {
		out[i] = e.Name
	}
	return out
}

// Table returns a copy of both code tables in declaration order.
func Table() CodeTable {
	return CodeTable{
		Bosses:       append([]CodeEntry(nil), bossTable...),
		Difficulties: append([]CodeEntry(nil), difficultyTable...),
	}
}

// CanonicalBossName maps loosely formatted input ("  pink   BEAN") to the
// table spelling. Encoding itself stays exact; this is for scraped pages and
// query parameters.
func CanonicalBossName(s string) (string, bool) {
	name, ok := foldedBosses[fold(s)]
	return name, ok
}

// CanonicalDifficulty is CanonicalBossName for difficulty names.
func CanonicalDifficulty(s string) (string, bool) {
	name, ok := foldedDifficulties[fold(s)]
	return name, ok
}
