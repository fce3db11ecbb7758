package service

import (
	"context"
	"errors"
	"log"
	"time"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/config"
	"maple-boss-api/internal/models"
	"maple-boss-api/internal/scraper"
	"maple-boss-api/internal/store"
)

// ErrRemoteRegistry is returned by operations that only make sense when the
// registry lives in the local store.
var ErrRemoteRegistry = errors.New("not available with a remote boss registry")

type Service struct {
	store    *store.SQLite
	scraper  scraper.Scraper
	registry bosscode.Registry
	remote   bool
	codec    *bosscode.Codec
	cfg      config.Config
	seed     []models.RegistryEntry
}

// SaveResult reports what was persisted for a character. Dropped lists the
// submitted entries that could not be encoded.
type SaveResult struct {
	Character models.Character     `json:"character"`
	Config    string               `json:"config"`
	Dropped   bosscode.Diagnostics `json:"dropped"`
}

type Loadout struct {
	Character models.Character          `json:"character"`
	Entries   []models.BossLoadoutEntry `json:"entries"`
	Dropped   bosscode.Diagnostics      `json:"dropped"`
}

// New builds the service around reg, which every price and id lookup goes
// through, including the codec's. A nil reg uses the local store; any other
// registry puts the service in remote mode, where seeding, refreshes and
// price history are disabled.
func New(st *store.SQLite, sc scraper.Scraper, reg bosscode.Registry, cfg config.Config) *Service {
	if reg == nil {
		reg = st
	}
	svc := &Service{
		store:    st,
		scraper:  sc,
		registry: reg,
		remote:   reg != bosscode.Registry(st),
		codec:    bosscode.New(reg, bosscode.WithConcurrency(cfg.LookupConcurrency)),
		cfg:      cfg,
	}
	if svc.remote {
		return svc
	}

	if seed, err := LoadRegistrySeed(cfg.RegistrySeed); err != nil {
		log.Printf("Warning: Failed to load registry seed: %v (seeding disabled)", err)
	} else {
		svc.seed = seed
	}

	return svc
}

// SeedRegistry fills an empty registry from the seed file. A populated
// registry is left untouched.
func (s *Service) SeedRegistry(ctx context.Context) error {
	if s.remote || len(s.seed) == 0 {
		return nil
	}
	n, err := s.store.RegistryCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Printf("Seeding registry with %d entries", len(s.seed))
	return s.store.UpsertRegistry(ctx, s.seed)
}

// StartScheduler refreshes crystal prices at every weekly reset until ctx is
// done.
func (s *Service) StartScheduler(ctx context.Context) {
	if s.remote {
		log.Printf("Scheduler: disabled, prices come from the remote registry")
		return
	}
	log.Printf("Scheduler started. Next refresh at: %v", s.nextReset(time.Now()))
	for {
		next := s.nextReset(time.Now())
		d := time.Until(next)
		log.Printf("Scheduler: sleeping until %v (in %v)", next, d)

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("Scheduler: stopped")
			return
		case <-timer.C:
		}

		log.Printf("Scheduler: starting weekly refresh")
		if n, err := s.RefreshRegistry(ctx); err != nil {
			log.Printf("scheduled refresh: %v", err)
		} else {
			log.Printf("Scheduler: refreshed %d crystal prices", n)
		}
	}
}

func (s *Service) nextReset(now time.Time) time.Time {
	tz, err := time.LoadLocation(s.cfg.TZ)
	if err != nil {
		tz = time.UTC
	}
	now = now.In(tz)
	day, err := config.ParseWeekday(s.cfg.ResetDay)
	if err != nil {
		day = time.Thursday
	}
	hour, min := 0, 0
	if v, err := time.Parse("15:04", s.cfg.ResetAt); err == nil {
		hour, min = v.Hour(), v.Minute()
	}
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, tz)
	run = run.AddDate(0, 0, (int(day)-int(now.Weekday())+7)%7)
	if !run.After(now) {
		run = run.AddDate(0, 0, 7)
	}
	return run
}

func (s *Service) RefreshRegistry(ctx context.Context) (int, error) {
	if s.remote {
		return 0, ErrRemoteRegistry
	}
	if s.scraper == nil {
		return 0, errors.New("no price scraper configured")
	}
	list, err := s.scraper.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for i := range list {
		list[i].UpdatedAt = now
	}
	if err := s.store.UpsertRegistry(ctx, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Service) Registry(ctx context.Context) ([]models.RegistryEntry, error) {
	return s.registry.FetchBossRegistry(ctx)
}

func (s *Service) CrystalValue(ctx context.Context, bossName, difficulty string) (int, error) {
	return s.registry.GetCrystalValue(ctx, bossName, difficulty)
}

func (s *Service) CrystalHistory(ctx context.Context, bossName, difficulty string, limit int) ([]models.CrystalSnapshot, error) {
	if s.remote {
		return nil, ErrRemoteRegistry
	}
	return s.store.CrystalHistory(ctx, bossName, difficulty, limit)
}

func (s *Service) RegistryID(ctx context.Context, bossName, difficulty string) (int64, error) {
	return s.codec.RegistryID(ctx, bossName, difficulty)
}

func (s *Service) Encode(ctx context.Context, entries []models.BossLoadoutEntry) (string, bosscode.Diagnostics) {
	return s.codec.EncodeLoadout(ctx, entries)
}

func (s *Service) Decode(configString string) ([]models.BossLoadoutEntry, bosscode.Diagnostics) {
	return s.codec.DecodeConfigString(configString)
}

func (s *Service) SaveCharacterBosses(ctx context.Context, name string, entries []models.BossLoadoutEntry) (SaveResult, error) {
	cfg, dropped := s.codec.EncodeLoadout(ctx, entries)
	if len(dropped) > 0 {
		log.Printf("character %s: %d of %d bosses could not be stored", name, len(dropped), len(entries))
	}
	c, err := s.store.UpsertCharacter(ctx, name, cfg)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Character: c, Config: cfg, Dropped: dropped}, nil
}

func (s *Service) CharacterBosses(ctx context.Context, name string) (Loadout, error) {
	c, err := s.store.GetCharacter(ctx, name)
	if err != nil {
		return Loadout{}, err
	}
	entries, dropped := s.codec.DecodeConfigString(c.BossConfig)
	return Loadout{Character: c, Entries: entries, Dropped: dropped}, nil
}

func (s *Service) Characters(ctx context.Context) ([]models.Character, error) {
	return s.store.ListCharacters(ctx)
}

func (s *Service) DeleteCharacter(ctx context.Context, name string) error {
	return s.store.DeleteCharacter(ctx, name)
}
