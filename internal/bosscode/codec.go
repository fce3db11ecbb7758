// Package bosscode converts boss loadouts to and from the compact
// ConfigString stored per character, e.g. "LT-H:2:1,DM-N:3:2".
//
// Each entry is "<boss code>-<difficulty code>:<crystal value>:<party size>".
// Entries that cannot be represented are dropped and reported as
// Diagnostics; the aggregate operations never fail.
package bosscode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"maple-boss-api/internal/models"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownBoss           = errors.New("unknown boss")
	ErrUnknownDifficulty     = errors.New("unknown difficulty")
	ErrUnknownBossCode       = errors.New("unknown boss code")
	ErrUnknownDifficultyCode = errors.New("unknown difficulty code")
	ErrMalformedCode         = errors.New("malformed boss code")
	ErrMalformedEntry        = errors.New("malformed config entry")
	ErrNotInRegistry         = errors.New("boss not in registry")
	ErrNoRegistry            = errors.New("no boss registry configured")
)

// DefaultCrystalValue is used whenever the registry cannot price a boss.
const DefaultCrystalValue = 1

const (
	entrySep = ","
	fieldSep = ":"
	codeSep  = "-"
)

// Registry is the authoritative source of crystal values and registry ids.
type Registry interface {
	GetCrystalValue(ctx context.Context, bossName, difficulty string) (int, error)
	FetchBossRegistry(ctx context.Context) ([]models.RegistryEntry, error)
}

// EntryError describes one dropped loadout entry.
type EntryError struct {
	Index int
	Raw   string
	Err   error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("entry %d (%q): %v", e.Index, e.Raw, e.Err)
}

func (e EntryError) Unwrap() error { return e.Err }

func (e EntryError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Index int    `json:"index"`
		Raw   string `json:"raw"`
		Error string `json:"error"`
	}{e.Index, e.Raw, msg})
}

// Diagnostics collects the entries dropped by an aggregate operation.
type Diagnostics []EntryError

// EncodeBossCode returns the "<boss>-<difficulty>" code for a known pair.
func EncodeBossCode(bossName, difficulty string) (string, error) {
	b, ok := bossCodes[bossName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBoss, bossName)
	}
	d, ok := difficultyCodes[difficulty]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	return b + codeSep + d, nil
}

// DecodeBossCode splits code on the first "-" and maps both halves back to names.
func DecodeBossCode(code string) (models.BossIdentity, error) {
	b, d, ok := strings.Cut(code, codeSep)
	if !ok {
		return models.BossIdentity{}, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}
	name, ok := bossNames[b]
	if !ok {
		return models.BossIdentity{}, fmt.Errorf("%w: %q", ErrUnknownBossCode, b)
	}
	diff, ok := difficultyNames[d]
	if !ok {
		return models.BossIdentity{}, fmt.Errorf("%w: %q", ErrUnknownDifficultyCode, d)
	}
	return models.BossIdentity{Name: name, Difficulty: diff}, nil
}

// DecodeConfigString parses a stored ConfigString. Malformed entries are
// skipped and returned as diagnostics; the result is never nil.
func DecodeConfigString(s string) ([]models.BossLoadoutEntry, Diagnostics) {
	entries := []models.BossLoadoutEntry{}
	if s == "" {
		return entries, nil
	}
	var diags Diagnostics
	for i, raw := range strings.Split(s, entrySep) {
		e, err := decodeEntry(raw)
		if err != nil {
			diags = append(diags, EntryError{Index: i, Raw: raw, Err: err})
			continue
		}
		entries = append(entries, e)
	}
	return entries, diags
}

func decodeEntry(raw string) (models.BossLoadoutEntry, error) {
	parts := strings.Split(raw, fieldSep)
	if len(parts) != 3 {
		return models.BossLoadoutEntry{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedEntry, len(parts))
	}
	id, err := DecodeBossCode(parts[0])
	if err != nil {
		return models.BossLoadoutEntry{}, err
	}
	price, ok := parseLeadingInt(parts[1])
	if !ok || price < 0 {
		price = DefaultCrystalValue
	}
	party, ok := parseLeadingInt(parts[2])
	if !ok || party <= 0 {
		party = 1
	}
	return models.BossLoadoutEntry{
		Name:       id.Name,
		Difficulty: id.Difficulty,
		PartySize:  party,
		Price:      price,
	}, nil
}

// parseLeadingInt reads an optionally signed run of digits after leading
// whitespace and ignores whatever follows, so "3x" is 3 and "x3" is invalid.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Codec prices loadouts against a Registry. It is safe for concurrent use.
type Codec struct {
	registry Registry
	limit    int
	logger   *log.Logger
}

type Option func(*Codec)

// WithConcurrency bounds the number of in-flight registry lookups.
func WithConcurrency(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.limit = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Codec over reg. A nil reg prices everything at DefaultCrystalValue.
func New(reg Registry, opts ...Option) *Codec {
	c := &Codec{registry: reg, limit: 8, logger: log.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CrystalValue asks the registry for the current price and falls back to
// DefaultCrystalValue on any failure, so pricing never blocks a save.
func (c *Codec) CrystalValue(ctx context.Context, bossName, difficulty string) int {
	if c.registry == nil {
		c.logger.Printf("bosscode: crystal value %s %s: %v", difficulty, bossName, ErrNoRegistry)
		return DefaultCrystalValue
	}
	v, err := c.registry.GetCrystalValue(ctx, bossName, difficulty)
	if err != nil {
		c.logger.Printf("bosscode: crystal value %s %s: %v (using %d)", difficulty, bossName, err, DefaultCrystalValue)
		return DefaultCrystalValue
	}
	if v < 0 {
		c.logger.Printf("bosscode: crystal value %s %s: negative price %d (using %d)", difficulty, bossName, v, DefaultCrystalValue)
		return DefaultCrystalValue
	}
	return v
}

type encodeResult struct {
	value string
	err   error
}

// EncodeLoadout serializes entries in order. Crystal values are looked up
// fresh for every entry; the entries' own Price fields are ignored.
func (c *Codec) EncodeLoadout(ctx context.Context, entries []models.BossLoadoutEntry) (string, Diagnostics) {
	if len(entries) == 0 {
		return "", nil
	}

	results := make([]encodeResult, len(entries))
	var g errgroup.Group
	g.SetLimit(c.limit)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			results[i] = c.encodeEntry(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	parts := make([]string, 0, len(entries))
	var diags Diagnostics
	for i, r := range results {
		if r.err != nil {
			d := EntryError{
				Index: i,
				Raw:   entries[i].Name + "/" + entries[i].Difficulty,
				Err:   r.err,
			}
			c.logger.Printf("bosscode: dropping %v", d)
			diags = append(diags, d)
			continue
		}
		parts = append(parts, r.value)
	}
	return strings.Join(parts, entrySep), diags
}

func (c *Codec) encodeEntry(ctx context.Context, e models.BossLoadoutEntry) encodeResult {
	code, err := EncodeBossCode(e.Name, e.Difficulty)
	if err != nil {
		return encodeResult{err: err}
	}
	value := c.CrystalValue(ctx, e.Name, e.Difficulty)
	party := e.PartySize
	if party <= 0 {
		party = 1
	}
	return encodeResult{value: code + fieldSep + strconv.Itoa(value) + fieldSep + strconv.Itoa(party)}
}

// DecodeConfigString is the package-level decoder with each dropped entry
// written to the codec's logger.
func (c *Codec) DecodeConfigString(s string) ([]models.BossLoadoutEntry, Diagnostics) {
	entries, diags := DecodeConfigString(s)
	for _, d := range diags {
		c.logger.Printf("bosscode: dropping %v", d)
	}
	return entries, diags
}

// RegistryID finds the registry identifier for a boss and difficulty by
// scanning a fresh registry snapshot.
func (c *Codec) RegistryID(ctx context.Context, bossName, difficulty string) (int64, error) {
	if c.registry == nil {
		return 0, ErrNoRegistry
	}
	entries, err := c.registry.FetchBossRegistry(ctx)
	if err != nil {
		c.logger.Printf("bosscode: fetch registry: %v", err)
		return 0, fmt.Errorf("fetch boss registry: %w", err)
	}
	for _, e := range entries {
		if e.BossName == bossName && e.Difficulty == difficulty {
			return e.ID, nil
		}
	}
	c.logger.Printf("bosscode: no registry id for %s %s", difficulty, bossName)
	return 0, fmt.Errorf("%w: %s %s", ErrNotInRegistry, difficulty, bossName)
}
