package backend

import (
	"context"
	"time"

	"github.com/ctfbridge/ctfbridge/internal/attempts"
	"github.com/ctfbridge/ctfbridge/internal/logger"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

// Ensure recordedBackend implements Backend interface.
var _ Backend = (*recordedBackend)(nil)

// Meta backend that records every submit outcome through a Recorder.
// Recording failures are logged and dropped; the wire result is untouched.
type recordedBackend struct {
	inner    Backend
	recorder attempts.Recorder
}

func WithRecorder(inner Backend, recorder attempts.Recorder) Backend {
	return &recordedBackend{inner: inner, recorder: recorder}
}

func (r *recordedBackend) Fetch(ctx context.Context) ([]protocol.Challenge, error) {
	return r.inner.Fetch(ctx)
}

func (r *recordedBackend) Submit(
	ctx context.Context,
	challengeID, flag string,
) (*protocol.SubmitResult, error) {
	result, err := r.inner.Submit(ctx, challengeID, flag)
	if err != nil {
		return nil, err
	}

	recordErr := r.recorder.Record(ctx, attempts.Attempt{
		ChallengeID: challengeID,
		Flag:        flag,
		Status:      result.Status,
		SubmittedAt: time.Now().UTC(),
	})
	if recordErr != nil {
		logger.Logger.WarnContext(ctx, "failed to record submission attempt",
			"challenge_id", challengeID,
			"error", recordErr,
		)
	}

	return result, nil
}

func (r *recordedBackend) Solves(ctx context.Context) ([]protocol.SolveRecord, error) {
	return r.inner.Solves(ctx)
}
