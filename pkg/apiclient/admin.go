package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope matches the wrapper used by the tracker's health and admin
// endpoints.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
}

// TrackerStatus is the admin view of the tracker.
type TrackerStatus struct {
	Ready    bool `json:"ready"`
	Capacity int  `json:"capacity"`
	Sessions int  `json:"sessions"`
}

// SessionInfo is one live session as reported by the admin endpoint.
type SessionInfo struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	Port       int    `json:"port"`
	LastActive string `json:"last_active"`
}

func (c *Client) getEnveloped(path string, data any) error {
	var env envelope
	if err := c.do(http.MethodGet, path, nil, &env); err != nil {
		return err
	}
	if env.Error != "" {
		return fmt.Errorf("tracker reported: %s", env.Error)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Status fetches the tracker's admin status.
func (c *Client) Status() (*TrackerStatus, error) {
	var status TrackerStatus
	if err := c.getEnveloped("/admin/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Sessions lists the tracker's live sessions.
func (c *Client) Sessions() ([]SessionInfo, error) {
	var sessions []SessionInfo
	if err := c.getEnveloped("/admin/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
