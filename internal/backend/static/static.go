// Package static serves a fixed challenge dataset loaded from YAML. It is the
// reference provider: with no dataset file configured it serves a built-in
// sample so the binary works out of the box.
package static

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v2"

	"github.com/ctfbridge/ctfbridge/internal/protocol"
	"github.com/ctfbridge/ctfbridge/internal/validator"
)

var tracer = otel.Tracer("github.com/ctfbridge/ctfbridge/internal/backend/static")

type DatasetFile struct {
	Name    string            `yaml:"name" validate:"required"`
	URL     string            `yaml:"url"  validate:"required,url"`
	Headers map[string]string `yaml:"headers"`
}

type DatasetChallenge struct {
	ID          string        `yaml:"id"       validate:"required"`
	Name        string        `yaml:"name"     validate:"required"`
	Category    string        `yaml:"category" validate:"required"`
	Description string        `yaml:"description"`
	Points      int           `yaml:"points"   validate:"gte=0"`
	Flag        string        `yaml:"flag"     validate:"required"`
	Files       []DatasetFile `yaml:"files"`
}

type DatasetSolve struct {
	ChallengeID string    `yaml:"challenge_id" validate:"required"`
	SolvedAt    time.Time `yaml:"solved_at"    validate:"required"`
}

// Dataset is the on-disk shape. Challenge order is the fetch order; solve
// order is the history order.
type Dataset struct {
	Challenges []DatasetChallenge `yaml:"challenges" validate:"required,dive"`
	Solves     []DatasetSolve     `yaml:"solves"     validate:"dive"`
}

type Provider struct {
	dataset Dataset
	flags   map[string]string
}

// New builds a provider from a dataset file, or from the built-in sample
// dataset when path is empty.
func New(ctx context.Context, path string) (*Provider, error) {
	if path == "" {
		return NewWithDataset(SampleDataset())
	}

	dataset, err := LoadDataset(ctx, path)
	if err != nil {
		return nil, err
	}

	return NewWithDataset(*dataset)
}

func NewWithDataset(dataset Dataset) (*Provider, error) {
	flags := make(map[string]string, len(dataset.Challenges))
	for _, challenge := range dataset.Challenges {
		if _, dup := flags[challenge.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id: %s", challenge.ID)
		}
		flags[challenge.ID] = challenge.Flag
	}

	return &Provider{dataset: dataset, flags: flags}, nil
}

func LoadDataset(ctx context.Context, path string) (*Dataset, error) {
	_, span := tracer.Start(ctx, "LoadDataset")
	defer span.End()

	span.SetAttributes(attribute.String("dataset.path", path))

	content, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error reading dataset file")
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var dataset Dataset
	err = yaml.Unmarshal(content, &dataset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error unmarshalling dataset")
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	span.AddEvent("validating parsed dataset")
	v := validator.Create()
	err = v.Validate(dataset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error validating dataset")
		return nil, fmt.Errorf("validate dataset: %w", err)
	}

	span.SetAttributes(attribute.Int("dataset.challenges", len(dataset.Challenges)))
	return &dataset, nil
}

func (p *Provider) Fetch(ctx context.Context) ([]protocol.Challenge, error) {
	_, span := tracer.Start(ctx, "static.Fetch")
	defer span.End()

	challenges := make([]protocol.Challenge, 0, len(p.dataset.Challenges))
	for _, entry := range p.dataset.Challenges {
		files := make([]protocol.FileRef, 0, len(entry.Files))
		for _, f := range entry.Files {
			files = append(files, protocol.FileRef{
				Name:    f.Name,
				URL:     f.URL,
				Headers: f.Headers,
			})
		}

		challenges = append(challenges, protocol.Challenge{
			ID:          entry.ID,
			Name:        entry.Name,
			Category:    entry.Category,
			Description: entry.Description,
			Points:      entry.Points,
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
	_, span := tracer.Start(ctx, "static.Submit")
	defer span.End()

	span.SetAttributes(attribute.String("challenge.id", challengeID))

	canonical, ok := p.flags[challengeID]
	if !ok {
		span.AddEvent("unknown challenge")
		return protocol.UnknownChallenge(), nil
	}

	// Exact, case-sensitive comparison. No trimming or normalization.
	if flag == canonical {
		return protocol.Accepted(), nil
	}

	return protocol.Rejected(), nil
}

func (p *Provider) Solves(ctx context.Context) ([]protocol.SolveRecord, error) {
	_, span := tracer.Start(ctx, "static.Solves")
	defer span.End()

	solves := make([]protocol.SolveRecord, 0, len(p.dataset.Solves))
	for _, entry := range p.dataset.Solves {
		solves = append(solves, protocol.SolveRecord{
			ChallengeID: entry.ChallengeID,
			SolvedAt:    protocol.Timestamp(entry.SolvedAt),
		})
	}

	span.SetAttributes(attribute.Int("solves", len(solves)))
	return solves, nil
}

// SampleDataset is the dataset served when none is configured: two challenges
// and one solve.
func SampleDataset() Dataset {
	return Dataset{
		Challenges: []DatasetChallenge{
			{
				ID:          "1",
				Name:        "sanity check",
				Category:    "misc",
				Description: "flag is FLAG{hello}",
				Points:      50,
				Flag:        "FLAG{hello}",
			},
			{
				ID:          "2",
				Name:        "baby web",
				Category:    "web",
				Description: "look at the source",
				Points:      100,
				Flag:        "FLAG{view_source}",
				Files: []DatasetFile{
					{Name: "index.html", URL: "https://example.com/index.html"},
				},
			},
		},
		Solves: []DatasetSolve{
			{
				ChallengeID: "1",
				SolvedAt:    time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}
