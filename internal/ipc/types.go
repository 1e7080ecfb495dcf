package ipc

import (
	"encoding/json"
	"time"
)

// ServiceName is the JSON-RPC service prefix.
const ServiceName = "Suimu"

// GetMaybeMusicRequest carries the csvPath argument. RequestID is optional
// and, when set, is used as the journal and log correlation id.
type GetMaybeMusicRequest struct {
	CSVPath   string `json:"csvPath"`
	RequestID string `json:"request_id,omitempty"`
}

// InvokeRequest dispatches a boundary command by name with raw JSON args.
type InvokeRequest struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

// InvokeResponse holds the command's envelope as raw JSON.
type InvokeResponse struct {
	Result json.RawMessage `json:"result"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	PID         int       `json:"pid"`
	Socket      string    `json:"socket"`
	LockPath    string    `json:"lock_path"`
	StartedAt   time.Time `json:"started_at"`
	Invocations int64     `json:"invocations"`
	Failures    int64     `json:"failures"`
	HTTPBind    string    `json:"http_bind,omitempty"`
	HistoryPath string    `json:"history,omitempty"`
	LogPath     string    `json:"log_path,omitempty"`
	Commands    []string  `json:"commands"`
}
