// Package exchange implements one protocol exchange: read the single JSON
// request from the input stream, dispatch it against a backend, and write the
// single JSON response to the output stream. Envelope-level failures write a
// diagnostic to the error stream instead and carry a non-zero exit code.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ctfbridge/ctfbridge/internal/backend"
	"github.com/ctfbridge/ctfbridge/internal/exitcode"
	"github.com/ctfbridge/ctfbridge/internal/logger"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
	"github.com/ctfbridge/ctfbridge/internal/validator"
)

var tracer = otel.Tracer("github.com/ctfbridge/ctfbridge/internal/exchange")

// Run is strictly linear: read, parse, dispatch, act, serialize, exit. The
// request is read in full before any processing begins; exactly one JSON
// document is written to stdout on any recognized request, including rejected
// and errored submit outcomes.
func Run(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	b backend.Backend,
) error {
	ctx, span := tracer.Start(ctx, "exchange.Run")
	defer span.End()

	input, err := io.ReadAll(stdin)
	if err != nil {
		return fail(stderr, span, fmt.Errorf("read request: %v", err))
	}

	var req protocol.Request
	if err := json.Unmarshal(input, &req); err != nil {
		return fail(stderr, span, fmt.Errorf("invalid request: %v", err))
	}

	span.SetAttributes(attribute.String("action", string(req.Action)))

	switch req.Action {
	case protocol.ActionFetch:
		challenges, err := b.Fetch(ctx)
		if err != nil {
			return fail(stderr, span, fmt.Errorf("fetch failed: %v", err))
		}
		if challenges == nil {
			challenges = []protocol.Challenge{}
		}
		for i := range challenges {
			if challenges[i].Files == nil {
				challenges[i].Files = []protocol.FileRef{}
			}
		}
		return respond(stdout, stderr, span, protocol.FetchResponse{Challenges: challenges})

	case protocol.ActionSubmit:
		// Missing challenge_id or flag is an envelope-level failure, the
		// same class as an unrecognized action.
		v := validator.Create()
		if err := v.Validate(&req); err != nil {
			return fail(stderr, span, fmt.Errorf("invalid submit request: %v", err))
		}

		result, err := b.Submit(ctx, req.ChallengeID, req.Flag)
		if err != nil {
			return fail(stderr, span, fmt.Errorf("submit failed: %v", err))
		}
		span.SetAttributes(attribute.String("submit.status", string(result.Status)))
		return respond(stdout, stderr, span, result)

	case protocol.ActionSolves:
		solves, err := b.Solves(ctx)
		if err != nil {
			return fail(stderr, span, fmt.Errorf("solves failed: %v", err))
		}
		if solves == nil {
			solves = []protocol.SolveRecord{}
		}
		return respond(stdout, stderr, span, protocol.SolvesResponse{Solves: solves})

	default:
		return fail(stderr, span, fmt.Errorf("unknown action: %s", req.Action))
	}
}

func respond(stdout, stderr io.Writer, span trace.Span, payload any) error {
	err := json.NewEncoder(stdout).Encode(payload)
	if err != nil {
		return fail(stderr, span, fmt.Errorf("write response: %v", err))
	}

	span.SetStatus(codes.Ok, "responded")
	return nil
}

// fail writes the diagnostic to the error stream and wraps the cause with the
// non-zero exit code. The output stream stays untouched.
func fail(stderr io.Writer, span trace.Span, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, "exchange failed")

	encodeErr := json.NewEncoder(stderr).Encode(protocol.Diagnostic{Error: cause.Error()})
	if encodeErr != nil {
		logger.Logger.Error("failed to write diagnostic", "error", encodeErr)
	}

	return exitcode.Wrap(exitcode.ExitErrored, cause)
}
