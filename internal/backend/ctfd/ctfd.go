// Package ctfd serves challenges from a live CTFd instance over its REST API.
package ctfd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

var tracer = otel.Tracer("github.com/ctfbridge/ctfbridge/internal/backend/ctfd")

type Config struct {
	BaseURL    string
	Token      string
	Cookie     string
	Timeout    time.Duration
	MaxRetries int
}

type Provider struct {
	baseURL   string
	applyAuth func(*http.Request)
	authType  string
	// GETs are idempotent and retried; the submit POST is not.
	getClient    *http.Client
	submitClient *http.Client
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	var applyAuth func(*http.Request)
	var authType string
	switch {
	case cfg.Token != "":
		authType = "token"
		applyAuth = func(r *http.Request) {
			r.Header.Set("Authorization", "Token "+cfg.Token)
		}
	case cfg.Cookie != "":
		authType = "cookie"
		applyAuth = func(r *http.Request) {
			r.Header.Set("Cookie", cfg.Cookie)
		}
	default:
		return nil, fmt.Errorf("either an API token or a session cookie is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = nil

	return &Provider{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		applyAuth:    applyAuth,
		authType:     authType,
		getClient:    retryClient.StandardClient(),
		submitClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *Provider) Fetch(ctx context.Context) ([]protocol.Challenge, error) {
	ctx, span := tracer.Start(ctx, "ctfd.Fetch")
	defer span.End()

	summaries, err := p.fetchChallengeSummaries(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list challenges")
		return nil, err
	}

	challenges := make([]protocol.Challenge, 0, len(summaries))
	for _, summary := range summaries {
		detail, err := p.fetchChallengeDetail(ctx, summary.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch challenge detail")
			return nil, err
		}

		challenge := protocol.Challenge{
			ID:          strconv.Itoa(summary.ID),
			Name:        nonEmpty(detail.Name, summary.Name),
			Category:    nonEmpty(detail.Category, summary.Category),
			Description: detail.Description,
			Points:      detail.Value,
			Files:       make([]protocol.FileRef, 0, len(detail.Files)),
		}

		for _, fileRef := range detail.Files {
			if fileRef == "" {
				continue
			}
			challenge.Files = append(challenge.Files, protocol.FileRef{
				Name:    filenameFromURL(fileRef),
				URL:     p.resolveFileURL(fileRef),
				Headers: p.authHeaders(),
			})
		}

		challenges = append(challenges, challenge)
	}

	span.SetAttributes(attribute.Int("challenges", len(challenges)))
	return challenges, nil
}

func (p *Provider) Submit(
	ctx context.Context,
	challengeID, flag string,
) (*protocol.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "ctfd.Submit")
	defer span.End()

	span.SetAttributes(attribute.String("challenge.id", challengeID))

	body, err := json.Marshal(map[string]any{
		"challenge_id": challengeID,
		"submission":   flag,
	})
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/v1/challenges/attempt",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	p.applyAuth(req)
	req.Header.Set("Content-Type", "application/json")

	if p.authType == "cookie" {
		csrfToken, err := p.fetchCSRFToken(ctx)
		if err == nil && csrfToken != "" {
			req.Header.Set("CSRF-Token", csrfToken)
		}
	}

	resp, err := p.submitClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit request failed")
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("ctfd submission failed: %s", strings.TrimSpace(string(respBody)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit rejected by ctfd")
		return nil, err
	}

	var parsed submitResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse ctfd response: %w", err)
	}

	result := parseSubmitResponse(parsed)
	span.SetAttributes(attribute.String("submit.status", string(result.Status)))
	return result, nil
}

func (p *Provider) Solves(ctx context.Context) ([]protocol.SolveRecord, error) {
	ctx, span := tracer.Start(ctx, "ctfd.Solves")
	defer span.End()

	// User-mode instances answer on users/me, team-mode on teams/me.
	paths := []string{"/api/v1/users/me/solves", "/api/v1/teams/me/solves"}

	var lastErr error
	for _, route := range paths {
		var parsed solvesResponse
		err := p.getJSON(ctx, p.baseURL+route, &parsed)
		if err != nil {
			lastErr = err
			continue
		}
		if !parsed.Success {
			lastErr = fmt.Errorf("ctfd solves response error: %s", strings.TrimSpace(parsed.Message))
			continue
		}

		solves := make([]protocol.SolveRecord, 0, len(parsed.Data))
		for _, entry := range parsed.Data {
			if entry.ChallengeID == 0 {
				continue
			}

			record := protocol.SolveRecord{ChallengeID: strconv.Itoa(entry.ChallengeID)}
			if t := parseSolveTime(entry.Date); t != nil {
				record.SolvedAt = protocol.Timestamp(*t)
			}
			solves = append(solves, record)
		}

		span.SetAttributes(attribute.Int("solves", len(solves)))
		return solves, nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "failed to list solves")
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("ctfd solves request failed")
}

func (p *Provider) fetchChallengeSummaries(ctx context.Context) ([]challengeSummary, error) {
	var payload listResponse
	err := p.getJSON(ctx, p.baseURL+"/api/v1/challenges", &payload)
	if err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("ctfd challenge list response error: %s", strings.TrimSpace(payload.Message))
	}
	return payload.Data, nil
}

func (p *Provider) fetchChallengeDetail(ctx context.Context, id int) (*challengeDetail, error) {
	var payload detailResponse
	err := p.getJSON(ctx, fmt.Sprintf("%s/api/v1/challenges/%d", p.baseURL, id), &payload)
	if err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("ctfd challenge detail response error: %s", strings.TrimSpace(payload.Message))
	}
	return &payload.Data, nil
}

func (p *Provider) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	p.applyAuth(req)
	req.Header.Set("Accept", "application/json")

	resp, err := p.getClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ctfd request failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *Provider) fetchCSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/challenges", nil)
	if err != nil {
		return "", err
	}
	p.applyAuth(req)
	req.Header.Set("Accept", "text/html")

	resp, err := p.getClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	match := csrfNonceRe.FindSubmatch(body)
	if len(match) > 1 {
		return string(match[1]), nil
	}
	return "", nil
}

var csrfNonceRe = regexp.MustCompile(`csrfNonce['"]?\s*:\s*['"]([^'"]+)['"]`)

func (p *Provider) resolveFileURL(fileRef string) string {
	if strings.HasPrefix(fileRef, "http://") || strings.HasPrefix(fileRef, "https://") {
		return fileRef
	}
	return p.baseURL + "/" + strings.TrimLeft(fileRef, "/")
}

func (p *Provider) authHeaders() map[string]string {
	headers := map[string]string{}
	req := &http.Request{Header: make(http.Header)}
	p.applyAuth(req)
	for k, v := range req.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return headers
}

// parseSubmitResponse maps CTFd's attempt statuses onto the protocol's three
// states. An already-solved challenge counts as accepted; anything
// unrecognized is an error carrying CTFd's message.
func parseSubmitResponse(parsed submitResponse) *protocol.SubmitResult {
	status := strings.ToLower(strings.TrimSpace(parsed.Data.Status))
	message := strings.TrimSpace(parsed.Data.Message)
	if message == "" {
		message = strings.TrimSpace(parsed.Message)
	}

	switch status {
	case "correct", "already_solved":
		return &protocol.SubmitResult{Status: protocol.StatusAccepted, Message: message}
	case "incorrect":
		return &protocol.SubmitResult{Status: protocol.StatusRejected, Message: message}
	default:
		if strings.Contains(strings.ToLower(message), "already solved") {
			return &protocol.SubmitResult{Status: protocol.StatusAccepted, Message: message}
		}
		return &protocol.SubmitResult{Status: protocol.StatusError, Message: message}
	}
}

func parseSolveTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func filenameFromURL(fileRef string) string {
	trimmed := fileRef
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	name := path.Base(trimmed)
	if name == "." || name == "/" {
		return fileRef
	}
	return name
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type challengeSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    int    `json:"value"`
}

type challengeDetail struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Value       int      `json:"value"`
	Files       []string `json:"files"`
}

type listResponse struct {
	Success bool               `json:"success"`
	Data    []challengeSummary `json:"data"`
	Message string             `json:"message"`
}

type detailResponse struct {
	Success bool            `json:"success"`
	Data    challengeDetail `json:"data"`
	Message string          `json:"message"`
}

type submitResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Message string `json:"message"`
}

type solvesResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		ChallengeID int    `json:"challenge_id"`
		Date        string `json:"date"`
	} `json:"data"`
	Message string `json:"message"`
}
