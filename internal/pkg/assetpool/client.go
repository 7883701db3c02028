// Package assetpool talks to the shared avatar asset service. Avatar images
// are leased from the unused pool and committed to the used pool once the
// generation that consumed them succeeds.
package assetpool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Pool names on the remote asset service.
const (
	PoolUnused = "unused"
	PoolUsed   = "used"
)

// ErrNoUnusedAssets means the unused pool is empty. Avatar generation cannot
// proceed without an image, so callers must surface this.
var ErrNoUnusedAssets = errors.New("no unused avatar assets available")

// Asset is one avatar image in the pool.
type Asset struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Pool     string `json:"pool"`
}

// ClientConfig configures the asset pool client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
}

// Client is the asset pool API client.
//
// Lease and Commit are two separate calls with no transaction between them:
// two concurrent pipelines can lease the same asset, and a crash between
// generation and Commit leaves the asset in the unused pool. Both are
// accepted; assets are interchangeable stock photos and a duplicate use is
// harmless.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rng        *rand.Rand
}

// NewClient creates the client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("asset pool base URL is required")
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Lease picks a random asset from the unused pool. The asset stays in the
// unused pool until Commit.
func (c *Client) Lease(ctx context.Context) (*Asset, error) {
	apiURL := fmt.Sprintf("%s/assets?pool=%s", c.baseURL, PoolUnused)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list assets failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var listResp struct {
		Assets []Asset `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(listResp.Assets) == 0 {
		return nil, ErrNoUnusedAssets
	}

	// Random pick spreads concurrent leases across the pool, shrinking the
	// duplicate-lease window without any coordination.
	asset := listResp.Assets[c.rng.Intn(len(listResp.Assets))]

	log.Debug().
		Str("file_id", asset.FileID).
		Str("filename", asset.Filename).
		Int("pool_size", len(listResp.Assets)).
		Msg("leased avatar asset")

	return &asset, nil
}

// Commit moves the asset to the used pool. Call only after the generation
// that consumed it succeeded.
func (c *Client) Commit(ctx context.Context, fileID string) error {
	body, err := json.Marshal(map[string]string{"pool": PoolUsed})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/assets/%s", c.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("commit asset failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	log.Debug().Str("file_id", fileID).Msg("committed avatar asset to used pool")
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
}
