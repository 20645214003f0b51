// Package backend defines the provider interface behind the protocol and the
// construction of the configured provider.
package backend

import (
	"context"

	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

//go:generate mockgen -destination ./mock/mock.go -package mock . Backend

// Backend is one CTF platform or data source served through the protocol.
//
// Fetch and Solves must be deterministic for fixed underlying state: repeated
// calls yield identical sequences. Every challenge ID within a Fetch result is
// unique.
type Backend interface {
	// Fetch retrieves all challenges.
	Fetch(ctx context.Context) ([]protocol.Challenge, error)

	// Submit verifies a flag guess for a challenge. Wrong flags and unknown
	// challenges are results, not errors; an error means the provider itself
	// failed.
	Submit(ctx context.Context, challengeID, flag string) (*protocol.SubmitResult, error)

	// Solves returns the solve history in the provider's stable order.
	Solves(ctx context.Context) ([]protocol.SolveRecord, error)
}
