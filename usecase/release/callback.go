package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier posts terminal deploy statuses back to the platform.
type Notifier struct {
	URL    string
	Client *http.Client
}

// NewNotifier builds a notifier with a bounded request timeout.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// DeployResult is the callback payload.
type DeployResult struct {
	DeploymentID string `json:"deployment_id"`
	// Status is successful, failed or interrupted.
	Status      string `json:"status"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// NotifyDeployResult posts one terminal result. Non-2xx responses are
// errors; callers treat callback failures as non-fatal.
func (n *Notifier) NotifyDeployResult(ctx context.Context, deployID, status, errorDetail string) error {
	body, err := json.Marshal(DeployResult{
		DeploymentID: deployID,
		Status:       status,
		ErrorDetail:  errorDetail,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform callback returned %s", resp.Status)
	}
	return nil
}
