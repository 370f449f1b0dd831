// Package syncclient talks to the remote store service.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"

	"mart_inventory/internal/models"
	"mart_inventory/internal/normalize"
	"mart_inventory/pkg/utils"
)

const (
	DefaultHealthTimeout = 2 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultPushTimeout   = 10 * time.Second
)

// ErrUnhealthy is returned when the health probe does not answer 200 in time.
var ErrUnhealthy = errors.New("remote store is not reachable")

// Client calls the /health, /get-all and /sync endpoints under a base URL.
type Client struct {
	endpoint      string
	httpClient    *http.Client
	secret        []byte
	healthTimeout time.Duration
	fetchTimeout  time.Duration
	pushTimeout   time.Duration
	now           func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTimeouts overrides the per-call budgets; zero keeps the default.
func WithTimeouts(health, fetch, push time.Duration) Option {
	return func(c *Client) {
		if health > 0 {
			c.healthTimeout = health
		}
		if fetch > 0 {
			c.fetchTimeout = fetch
		}
		if push > 0 {
			c.pushTimeout = push
		}
	}
}

// WithSharedSecret makes the client sign a bearer token for every data call.
func WithSharedSecret(secret string) Option {
	return func(c *Client) { c.secret = []byte(secret) }
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for endpoint, e.g. "http://127.0.0.1:5000/api".
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:      strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		httpClient:    &http.Client{},
		healthTimeout: DefaultHealthTimeout,
		fetchTimeout:  DefaultFetchTimeout,
		pushTimeout:   DefaultPushTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the normalized base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) headers(storeName string) (gout.H, error) {
	h := gout.H{"Accept": "application/json"}
	if len(c.secret) == 0 {
		return h, nil
	}
	token, err := utils.GenerateSyncToken(c.secret, storeName, c.now())
	if err != nil {
		return nil, err
	}
	h["Authorization"] = "Bearer " + token
	return h, nil
}

// Health probes the remote store.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	var body struct {
		Status   string `json:"status"`
		Database bool   `json:"database"`
	}
	code := 0
	err := gout.New(c.httpClient).
		GET(c.endpoint + "/health").
		WithContext(ctx).
		BindJSON(&body).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: health answered %d", ErrUnhealthy, code)
	}
	if !body.Database {
		utils.LogWarn(nil, "Remote store is up but reports no database", map[string]interface{}{"endpoint": c.endpoint})
	}
	return nil
}

type getAllBody struct {
	Products     []map[string]any `json:"products"`
	Categories   []any            `json:"categories"`
	Settings     map[string]any   `json:"settings"`
	Transactions []map[string]any `json:"transactions"`
	Error        string           `json:"error"`
}

// FetchAll reads the whole remote state and maps it onto a snapshot. The
// returned settings pointer is nil when the remote has no settings row; the
// snapshot then carries the default settings.
func (c *Client) FetchAll(ctx context.Context) (models.Snapshot, *models.Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	header, err := c.headers("")
	if err != nil {
		return models.Snapshot{}, nil, err
	}

	var body getAllBody
	code := 0
	err = gout.New(c.httpClient).
		GET(c.endpoint + "/get-all").
		WithContext(ctx).
		SetHeader(header).
		BindJSON(&body).
		Code(&code).
		Do()
	if err != nil {
		return models.Snapshot{}, nil, fmt.Errorf("fetching remote snapshot: %w", err)
	}
	if code != http.StatusOK {
		return models.Snapshot{}, nil, fmt.Errorf("fetching remote snapshot: status %d: %s", code, body.Error)
	}

	snap, settings := mapRemote(body)
	return snap, settings, nil
}

func mapRemote(body getAllBody) (models.Snapshot, *models.Settings) {
	snap := models.DefaultSnapshot()

	for _, row := range body.Products {
		snap.Products = append(snap.Products, normalize.Product(row))
	}
	for _, row := range body.Transactions {
		snap.Transactions = append(snap.Transactions, normalize.Transaction(row))
	}

	var categories []string
	for _, v := range body.Categories {
		switch c := v.(type) {
		case string:
			categories = append(categories, c)
		case map[string]any:
			if name, ok := c["name"].(string); ok {
				categories = append(categories, name)
			}
		}
	}
	if len(categories) > 0 {
		snap.Categories = categories
	}

	settings := normalize.Settings(body.Settings)
	if settings != nil {
		snap.Settings = *settings
	}
	return snap, settings
}

// Push replaces the whole remote state with snap.
func (c *Client) Push(ctx context.Context, snap models.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	header, err := c.headers(snap.Settings.MartName)
	if err != nil {
		return err
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	code := 0
	err = gout.New(c.httpClient).
		POST(c.endpoint + "/sync").
		WithContext(ctx).
		SetHeader(header).
		SetJSON(snap).
		BindJSON(&body).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("pushing snapshot: %w", err)
	}
	if code != http.StatusOK || !body.Success {
		return fmt.Errorf("pushing snapshot: status %d: %s", code, body.Error)
	}
	return nil
}

// PushAll is Push reduced to a success flag; failures are logged.
func (c *Client) PushAll(ctx context.Context, snap models.Snapshot) bool {
	if err := c.Push(ctx, snap); err != nil {
		utils.LogWarn(err, "Remote push failed", map[string]interface{}{"endpoint": c.endpoint})
		return false
	}
	return true
}
