package api

import (
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/pocket"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SummaryResponse describes the served analysis run
type SummaryResponse struct {
	RunID       string       `json:"runId"`
	CreatedAt   time.Time    `json:"createdAt"`
	PocketCount int          `json:"pocketCount"`
	Stats       pocket.Stats `json:"stats"`
}

// PocketsResponse lists every pocket of a run
type PocketsResponse struct {
	RunID   string          `json:"runId"`
	Pockets []pocket.Pocket `json:"pockets"`
}

// PocketResponse is a single pocket
type PocketResponse struct {
	RunID  string        `json:"runId"`
	Pocket pocket.Pocket `json:"pocket"`
}

// EntityResponse answers a per-entity lookup. Pocket is absent when the
// entity is in no pocket.
type EntityResponse struct {
	RunID    string `json:"runId"`
	EntityID string `json:"entityId"`
	InPocket bool   `json:"inPocket"`
	Pocket   *int   `json:"pocket,omitempty"`
	Color    string `json:"color"`
}

// ReloadResponse reports a successful reload
type ReloadResponse struct {
	RunID          string `json:"runId"`
	PreviousRunID  string `json:"previousRunId,omitempty"`
	PocketCount    int    `json:"pocketCount"`
	Entities       int    `json:"entities"`
	ConcaveLinks   int    `json:"concaveLinks"`
	DurationMillis int64  `json:"durationMs"`
}
