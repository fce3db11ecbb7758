// Package registry talks to a remote boss registry over its JSON API.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchBossRegistry(ctx context.Context) ([]models.RegistryEntry, error) {
	var env models.RegistryEnvelope
	if err := c.getJSON(ctx, "/api/v1/registry", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, fmt.Errorf("registry: %s", msg)
	}
	return env.Data, nil
}

func (c *Client) GetCrystalValue(ctx context.Context, bossName, difficulty string) (int, error) {
	var out struct {
		Value *int `json:"value"`
	}
	q := url.Values{"boss": {bossName}, "difficulty": {difficulty}}
	if err := c.getJSON(ctx, "/api/v1/registry/crystal", q, &out); err != nil {
		return 0, err
	}
	if out.Value == nil {
		return 0, errors.New("registry: crystal response missing value")
	}
	return *out.Value, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MapleBossAPI/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("registry: GET %s: %w", path, bosscode.ErrNotInRegistry)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("registry: GET %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("registry: decode %s: %w", path, err)
	}
	return nil
}
