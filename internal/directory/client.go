package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/model"
)

// StatusError is returned when the directory service answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "directory: unexpected status " + e.Status
}

// Client fetches nodelist records owned by a Telegram user.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("directory: decode: %w", err)
	}
	return nil
}

// Fetch returns all records registered for userID. An empty slice means
// the user has no nodes in the directory.
func (c *Client) Fetch(ctx context.Context, userID int64) ([]model.DirectoryRecord, error) {
	var records []model.DirectoryRecord
	if err := c.do(ctx, "/"+strconv.FormatInt(userID, 10), &records); err != nil {
		return nil, err
	}
	return records, nil
}
