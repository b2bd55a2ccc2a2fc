// Package logcollector reconciles BK-Log custom collector configs against
// the remote log platform so container log paths of a module stay
// registered.
package logcollector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// CollectorConfig is one custom collector registration on the log
// platform.
type CollectorConfig struct {
	// ID is assigned by the platform; zero for unregistered configs.
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`

	AppCode     string `json:"app_code"`
	ModuleName  string `json:"module_name"`
	Environment string `json:"environment"`

	// LogPaths are container-side glob patterns the collector tails.
	LogPaths []string `json:"log_paths"`
	// ESIndex is the storage index the platform writes into.
	ESIndex string `json:"es_index,omitempty"`
}

// APIClient talks to the BK-Log management API.
type APIClient struct {
	BaseURL string
	// Token authenticates platform-level calls.
	Token  string
	Client *http.Client
}

// NewAPIClient builds a client with a bounded request timeout.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// GetConfig fetches a collector config by name. Unknown names map to
// model.ErrNotFound.
func (c *APIClient) GetConfig(ctx context.Context, name string) (*CollectorConfig, error) {
	var out CollectorConfig
	err := c.do(ctx, http.MethodGet, "/collectors/"+name, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConfig registers a new collector config and fills in its ID.
func (c *APIClient) CreateConfig(ctx context.Context, cfg *CollectorConfig) error {
	return c.do(ctx, http.MethodPost, "/collectors", cfg, cfg)
}

// UpdateConfig replaces an existing collector config.
func (c *APIClient) UpdateConfig(ctx context.Context, cfg *CollectorConfig) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/collectors/%d", cfg.ID), cfg, cfg)
}

// do issues one JSON request. 404 maps to model.ErrNotFound, any other
// non-2xx response to model.ErrDependency so callers can tell platform
// outages apart from bad input.
func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("X-Bkapi-Authorization", c.Token)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDependency, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: collector config", model.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: log platform returned %s", model.ErrDependency, resp.Status)
	}
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding log platform response: %v", model.ErrDependency, err)
	}
	return nil
}
