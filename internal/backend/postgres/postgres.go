// Package postgres serves challenges from a gorm-managed postgres store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sloggorm "github.com/orandin/slog-gorm"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormtracing "gorm.io/plugin/opentelemetry/tracing"

	"github.com/ctfbridge/ctfbridge/internal/config"
	"github.com/ctfbridge/ctfbridge/internal/logger"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

var tracer = otel.Tracer("github.com/ctfbridge/ctfbridge/internal/backend/postgres")

type Provider struct {
	db *gorm.DB
}

// Open connects to the configured database. The initial connection is retried
// with exponential backoff so a cold database container does not fail the
// invocation immediately.
func Open(ctx context.Context, cfg *config.Config) (*Provider, error) {
	ctx, span := tracer.Start(ctx, "postgres.Open")
	defer span.End()

	gormLogger := slog.New(logger.Handler)
	sg := sloggorm.New(
		sloggorm.WithHandler(gormLogger.Handler()),
		sloggorm.SetLogLevel(sloggorm.DefaultLogType, slog.Level(cfg.Logging.Gorm.Level)),
	)
	if cfg.Logging.Gorm.TraceQueries {
		sg = sloggorm.New(
			sloggorm.WithHandler(gormLogger.Handler()),
			sloggorm.WithTraceAll(),
			sloggorm.SetLogLevel(sloggorm.DefaultLogType, slog.Level(cfg.Logging.Gorm.Level)),
		)
	}

	var db *gorm.DB
	backoff := retry.WithMaxDuration(time.Second*15, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		db, err = gorm.Open(
			gormpostgres.Open(cfg.PostgresDSN()),
			&gorm.Config{Logger: sg, TranslateError: true},
		)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to initialize database")
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire underlying database connection")
		return nil, fmt.Errorf("failed to acquire underlying database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConnections)
	sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnectionTTL)

	err = db.Use(gormtracing.NewPlugin())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add otel plugin to gorm")
		return nil, fmt.Errorf("failed to add otel plugin to gorm: %w", err)
	}

	return &Provider{db: db}, nil
}

// DB exposes the underlying handle for the migrate subcommand.
func (p *Provider) DB() *gorm.DB {
	return p.db
}

func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Provider) Fetch(ctx context.Context) ([]protocol.Challenge, error) {
	ctx, span := tracer.Start(ctx, "postgres.Fetch")
	defer span.End()

	var rows []Challenge
	err := p.db.WithContext(ctx).
		Preload("Files").
		Order("position, id").
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list challenges")
		return nil, err
	}

	challenges := make([]protocol.Challenge, 0, len(rows))
	for _, row := range rows {
		files := make([]protocol.FileRef, 0, len(row.Files))
		for _, f := range row.Files {
			files = append(files, protocol.FileRef{
				Name:    f.Name,
				URL:     f.URL,
				Headers: headerMap(f.Headers),
			})
		}

		challenges = append(challenges, protocol.Challenge{
			ID:          row.ID,
			Name:        row.Name,
			Category:    row.Category,
			Description: row.Description,
			Points:      row.Points,
			Files:       files,
		})
	}

	span.SetAttributes(attribute.Int("challenges", len(challenges)))
	return challenges, nil
}

func (p *Provider) Submit(
	ctx context.Context,
	challengeID, flag string,
) (*protocol.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "postgres.Submit")
	defer span.End()

	span.SetAttributes(attribute.String("challenge.id", challengeID))

	var challenge Challenge
	err := p.db.WithContext(ctx).First(&challenge, "id = ?", challengeID).Error

	var result *protocol.SubmitResult
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		result = protocol.UnknownChallenge()
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to look up challenge")
		return nil, err
	case flag == challenge.Flag:
		result = protocol.Accepted()
	default:
		result = protocol.Rejected()
	}

	p.logAttempt(ctx, challengeID, flag, result)

	span.SetAttributes(attribute.String("submit.status", string(result.Status)))
	return result, nil
}

// logAttempt persists the attempt row. Best effort: failures are logged and
// never change the submit outcome.
func (p *Provider) logAttempt(
	ctx context.Context,
	challengeID, flag string,
	result *protocol.SubmitResult,
) {
	raw, err := json.Marshal(protocol.Request{
		Action:      protocol.ActionSubmit,
		ChallengeID: challengeID,
		Flag:        flag,
	})
	if err != nil {
		logger.Logger.WarnContext(ctx, "failed to encode attempt request", "error", err)
		raw = nil
	}

	attempt := SubmissionAttempt{
		ChallengeID: challengeID,
		Flag:        flag,
		Status:      string(result.Status),
		Request:     datatypes.JSON(raw),
	}
	err = p.db.WithContext(ctx).Create(&attempt).Error
	if err != nil {
		logger.Logger.WarnContext(ctx, "failed to persist submission attempt",
			"challenge_id", challengeID,
			"error", err,
		)
	}
}

func (p *Provider) Solves(ctx context.Context) ([]protocol.SolveRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.Solves")
	defer span.End()

	var rows []Solve
	err := p.db.WithContext(ctx).
		Order("solved_at, id").
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list solves")
		return nil, err
	}

	solves := make([]protocol.SolveRecord, 0, len(rows))
	for _, row := range rows {
		solves = append(solves, protocol.SolveRecord{
			ChallengeID: row.ChallengeID,
			SolvedAt:    protocol.Timestamp(row.SolvedAt),
		})
	}

	span.SetAttributes(attribute.Int("solves", len(solves)))
	return solves, nil
}

func headerMap(raw datatypes.JSONMap) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	headers := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			headers[k] = s
		}
	}
	return headers
}
