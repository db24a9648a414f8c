package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/vault"
)

// maxBodySize bounds every response read.
const maxBodySize = 1 << 20

// Config configures a Client.
type Config struct {
	// Region selects the Share deployment (us, ous, jp or a synonym).
	Region string

	Username string
	Password string

	// BaseURL overrides the regional base URL.
	BaseURL string

	// HTTP is the client used for requests. Defaults to one with Timeout.
	HTTP    *http.Client
	Timeout time.Duration

	// Logger for debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to Dexcom Share on behalf of one publisher account.
type Client struct {
	baseURL  string
	appID    string
	username string
	password string
	http     *http.Client
	logger   *slog.Logger

	mu        sync.Mutex
	accountID uuid.UUID
	sessionID uuid.UUID
}

// New validates cfg and returns a client. No network traffic happens until
// the first Login or reading.
func New(cfg Config) (*Client, error) {
	region, err := vault.NormalizeRegion(cfg.Region)
	if err != nil {
		return nil, ErrInvalidRegion
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, ErrMissingUsername
	}
	if cfg.Password == "" {
		return nil, ErrMissingPassword
	}

	base, appID := BaseURLUS, ApplicationID
	switch region {
	case vault.RegionOUS:
		base = BaseURLOUS
	case vault.RegionJP:
		base, appID = BaseURLJP, ApplicationIDJP
	}
	if cfg.BaseURL != "" {
		base = cfg.BaseURL
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(base, "/") + servicePath,
		appID:    appID,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		http:     httpClient,
		logger:   logger,
	}, nil
}

// Login authenticates the publisher account and opens a session.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	if c.accountID == uuid.Nil {
		var raw string
		err := c.post(ctx, endpointAuthenticate, nil, map[string]string{
			"accountName":   c.username,
			"password":      c.password,
			"applicationId": c.appID,
		}, &raw)
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		id, err := parseID(raw)
		if err != nil {
			return ErrInvalidAccount
		}
		c.accountID = id
	}

	var raw string
	err := c.post(ctx, endpointLoginByID, nil, map[string]string{
		"accountId":     c.accountID.String(),
		"password":      c.password,
		"applicationId": c.appID,
	}, &raw)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	id, err := parseID(raw)
	if err != nil {
		return ErrInvalidSession
	}
	c.sessionID = id
	c.logger.Debug("share session established")
	return nil
}

// CurrentGlucoseReading returns the most recent reading as a *GlucoseReading.
func (c *Client) CurrentGlucoseReading(ctx context.Context) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID == uuid.Nil {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}

	readings, err := c.latest(ctx)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.sessionExpired() {
		c.logger.Debug("share session expired, logging in again", slog.String("code", apiErr.Code))
		c.sessionID = uuid.Nil
		if err := c.login(ctx); err != nil {
			return nil, err
		}
		readings, err = c.latest(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoReadings
	}

	r := readings[0]
	return &GlucoseReading{
		value: r.Value,
		trend: trendName(r.Trend),
		time:  parseShareTime(r.WT),
	}, nil
}

func (c *Client) latest(ctx context.Context) ([]rawReading, error) {
	query := url.Values{}
	query.Set("sessionId", c.sessionID.String())
	query.Set("minutes", strconv.Itoa(latestMinutes))
	query.Set("maxCount", strconv.Itoa(latestMaxCount))

	var readings []rawReading
	if err := c.post(ctx, endpointLatest, query, nil, &readings); err != nil {
		return nil, fmt.Errorf("read latest glucose: %w", err)
	}
	return readings, nil
}

// post sends a JSON request and decodes the JSON response into out. Request
// bodies are never included in returned errors.
func (c *Client) post(ctx context.Context, endpoint string, query url.Values, body any, out any) error {
	target := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, redactURLError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// redactURLError drops the request URL, which may carry the session ID.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.Trim(raw, `"`))
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}
