package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
)

// PushClient delivers collected snapshots to the relay server.
type PushClient struct {
	serverURL string
	client    *http.Client
}

// PushAck is the relay's acknowledgement of a snapshot push.
type PushAck struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Online    int    `json:"online"`
	WithSNMP  int    `json:"withSNMP"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
}

// NewPushClient creates a PushClient for the given relay base URL.
func NewPushClient(serverURL string, timeout time.Duration) *PushClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PushClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

// Push sends a full snapshot to POST /api/bridge-data and returns the
// relay's acknowledgement.
func (c *PushClient) Push(ctx context.Context, devices []report.Device) (*PushAck, error) {
	body, err := json.Marshal(map[string]interface{}{"printers": devices})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/bridge-data", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push snapshot: %w", err)
	}
	defer resp.Body.Close()

	var ack PushAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("decode ack: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !ack.Success {
		if ack.Error != "" {
			return nil, fmt.Errorf("server rejected snapshot: %s", ack.Error)
		}
		return nil, fmt.Errorf("server rejected snapshot: status %d", resp.StatusCode)
	}
	return &ack, nil
}
