package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ctfbridge/ctfbridge/internal/attempts"
	mockattempts "github.com/ctfbridge/ctfbridge/internal/attempts/mock"
	"github.com/ctfbridge/ctfbridge/internal/backend"
	mockbackend "github.com/ctfbridge/ctfbridge/internal/backend/mock"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

func TestWithRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsOutcome", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mockbackend.NewMockBackend(ctrl)
		recorder := mockattempts.NewMockRecorder(ctrl)

		inner.EXPECT().
			Submit(gomock.Any(), "1", "FLAG{hello}").
			Return(protocol.Accepted(), nil).
			Times(1)

		var recorded attempts.Attempt
		recorder.EXPECT().
			Record(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, attempt attempts.Attempt) {
				recorded = attempt
			}).
			Return(nil).
			Times(1)

		result, err := backend.WithRecorder(inner, recorder).Submit(ctx, "1", "FLAG{hello}")
		require.NoError(t, err, "submit must not error")
		assert.Equal(t, protocol.Accepted(), result, "wrapped result must pass through")

		assert.Equal(t, "1", recorded.ChallengeID, "wrong recorded challenge")
		assert.Equal(t, "FLAG{hello}", recorded.Flag, "wrong recorded flag")
		assert.Equal(t, protocol.StatusAccepted, recorded.Status, "wrong recorded status")
		assert.False(t, recorded.SubmittedAt.IsZero(), "submission time must be set")
	})

	t.Run("RecorderFailureIsDropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mockbackend.NewMockBackend(ctrl)
		recorder := mockattempts.NewMockRecorder(ctrl)

		inner.EXPECT().
			Submit(gomock.Any(), "1", "FLAG{nope}").
			Return(protocol.Rejected(), nil).
			Times(1)
		recorder.EXPECT().
			Record(gomock.Any(), gomock.Any()).
			Return(errors.New("redis down")).
			Times(1)

		result, err := backend.WithRecorder(inner, recorder).Submit(ctx, "1", "FLAG{nope}")
		require.NoError(t, err, "recorder failures must not surface")
		assert.Equal(t, protocol.Rejected(), result, "result must be untouched")
	})

	t.Run("NoRecordOnBackendError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mockbackend.NewMockBackend(ctrl)
		recorder := mockattempts.NewMockRecorder(ctrl)

		inner.EXPECT().
			Submit(gomock.Any(), "1", "FLAG{hello}").
			Return(nil, errors.New("upstream unreachable")).
			Times(1)

		_, err := backend.WithRecorder(inner, recorder).Submit(ctx, "1", "FLAG{hello}")
		require.Error(t, err, "backend errors must surface")
	})

	t.Run("ReadsPassThrough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mockbackend.NewMockBackend(ctrl)
		recorder := mockattempts.NewMockRecorder(ctrl)

		inner.EXPECT().Fetch(gomock.Any()).Return([]protocol.Challenge{{ID: "1"}}, nil).Times(1)
		inner.EXPECT().Solves(gomock.Any()).Return([]protocol.SolveRecord{}, nil).Times(1)

		wrapped := backend.WithRecorder(inner, recorder)

		challenges, err := wrapped.Fetch(ctx)
		require.NoError(t, err)
		assert.Len(t, challenges, 1)

		solves, err := wrapped.Solves(ctx)
		require.NoError(t, err)
		assert.Empty(t, solves)
	})
}
