package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/config"
	"maple-boss-api/internal/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	separatorRE  = regexp.MustCompile(`[,.\s']`)
	digitsRE     = regexp.MustCompile(`^\d+$`)
)

type Scraper interface {
	Fetch(ctx context.Context) ([]models.RegistryEntry, error)
}

type WebScraper struct {
	url    string
	client *http.Client
}

func New(cfg config.Config) Scraper {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebScraper{url: cfg.PriceSourceURL, client: &http.Client{Timeout: timeout}}
}

func (w *WebScraper) Fetch(ctx context.Context) ([]models.RegistryEntry, error) {
	if w.url == "" {
		return nil, fmt.Errorf("scraper: no price source configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "MapleBossAPI/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("scraper: fetch failed for %s: %v", w.url, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("scraper: HTTP %d for %s", resp.StatusCode, w.url)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return ParsePriceTable(resp.Body)
}

// ParsePriceTable reads every table row with at least three cells laid out as
// boss, difficulty, crystal value. Header rows and rows naming unknown
// bosses are skipped.
func ParsePriceTable(r io.Reader) ([]models.RegistryEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.BossIdentity]int)
	var order []models.BossIdentity
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		bossText := cleanText(cells.Eq(0).Text())
		diffText := cleanText(cells.Eq(1).Text())
		priceText := cleanText(cells.Eq(2).Text())

		boss, ok := bosscode.CanonicalBossName(bossText)
		if !ok {
			log.Printf("scraper: skipping unknown boss %q", bossText)
			return
		}
		diff, ok := bosscode.CanonicalDifficulty(diffText)
		if !ok {
			log.Printf("scraper: skipping %s with unknown difficulty %q", boss, diffText)
			return
		}
		price, ok := parsePrice(priceText)
		if !ok {
			log.Printf("scraper: skipping %s %s with unreadable price %q", diff, boss, priceText)
			return
		}

		id := models.BossIdentity{Name: boss, Difficulty: diff}
		if _, dup := seen[id]; !dup {
			order = append(order, id)
		}
		seen[id] = price
	})

	now := time.Now().UTC()
	out := make([]models.RegistryEntry, 0, len(order))
	for _, id := range order {
		out = append(out, models.RegistryEntry{
			BossName:     id.Name,
			Difficulty:   id.Difficulty,
			CrystalValue: seen[id],
			UpdatedAt:    now,
		})
	}
	log.Printf("scraper: parsed %d crystal prices", len(out))
	return out, nil
}

func parsePrice(s string) (int, bool) {
	s = separatorRE.ReplaceAllString(s, "")
	if !digitsRE.MatchString(s) {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
