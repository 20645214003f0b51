// Package protocol defines the wire contract between a sync orchestrator and
// this backend process: one JSON request on stdin, one JSON response on stdout,
// or a JSON diagnostic on stderr with a non-zero exit.
package protocol

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionFetch  Action = "fetch"
	ActionSubmit Action = "submit"
	ActionSolves Action = "solves"
)

// Request is the single JSON document read from stdin. challenge_id and flag
// are required for submit and ignored for every other action.
type Request struct {
	Action      Action `json:"action"`
	ChallengeID string `json:"challenge_id" validate:"required_if=Action submit"`
	Flag        string `json:"flag"         validate:"required_if=Action submit"`
}

type Challenge struct {
	ID          string    `json:"id"          validate:"required"`
	Name        string    `json:"name"        validate:"required"`
	Category    string    `json:"category"    validate:"required"`
	Description string    `json:"description"`
	Points      int       `json:"points"      validate:"gte=0"`
	Files       []FileRef `json:"files"`
}

// FileRef is a challenge attachment. Headers carries auth material for
// protected downloads and stays off the wire when empty.
type FileRef struct {
	Name    string            `json:"name" validate:"required"`
	URL     string            `json:"url"  validate:"required"`
	Headers map[string]string `json:"headers,omitempty"`
}

type SubmitStatus string

const (
	StatusAccepted SubmitStatus = "accepted"
	StatusRejected SubmitStatus = "rejected"
	StatusError    SubmitStatus = "error"
)

type SubmitResult struct {
	Status  SubmitStatus `json:"status"`
	Message string       `json:"message"`
}

type SolveRecord struct {
	ChallengeID string    `json:"challenge_id"`
	SolvedAt    Timestamp `json:"solved_at"`
}

type FetchResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type SolvesResponse struct {
	Solves []SolveRecord `json:"solves"`
}

// Diagnostic is the stderr payload for envelope-level failures.
type Diagnostic struct {
	Error string `json:"error"`
}

// Timestamp serializes as RFC 3339 in UTC regardless of the source location.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string")
	}

	parsed, err := time.Parse(time.RFC3339, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}

	*t = Timestamp(parsed.UTC())
	return nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
