// Package attempts records submission attempts as a side effect of submit.
// Recording is best effort: a recorder failure never changes the submit
// outcome returned on the wire.
package attempts

import (
	"context"
	"time"

	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

type Attempt struct {
	ChallengeID string                `json:"challenge_id"`
	Flag        string                `json:"flag"`
	Status      protocol.SubmitStatus `json:"status"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

//go:generate mockgen -destination ./mock/mock.go -package mock . Recorder

type Recorder interface {
	Record(ctx context.Context, attempt Attempt) error
}

// Ensure Noop implements Recorder interface.
var _ Recorder = Noop{}

type Noop struct{}

func (Noop) Record(context.Context, Attempt) error {
	return nil
}
