package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/httpx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const maxResponseBytes = 1 << 20

// Client asks the remote generation service for a session.
type Client interface {
	Generate(ctx context.Context, brief string, sessionLength int) ([]practice.Activity, error)
}

type Config struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type client struct {
	log        *logger.Logger
	endpoint   string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	now        func() time.Time
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("missing generation endpoint")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		log:        log.With("client", "GenerationClient"),
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(0, cfg.MaxRetries),
		httpClient: hc,
		now:        time.Now,
	}, nil
}

type generateRequest struct {
	SkillSummary  string `json:"skillSummary"`
	SessionLength int    `json:"sessionLength"`
}

type generateResponse struct {
	Activities []wireActivity `json:"activities"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// wireActivity is lenient on input: models sometimes say "type" instead of
// "kind" and fractional minutes instead of integers.
type wireActivity struct {
	Kind             string   `json:"kind"`
	Type             string   `json:"type"`
	SourceExerciseID string   `json:"sourceExerciseId"`
	SourcePieceID    string   `json:"sourcePieceId"`
	SourceGoalID     string   `json:"sourceGoalId"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Duration         *float64 `json:"duration"`
	Suggestions      []string `json:"suggestions"`
}

func (c *client) Generate(ctx context.Context, brief string, sessionLength int) ([]practice.Activity, error) {
	ctx, span := otel.Tracer("practicecoach/generation").Start(ctx, "generation.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int("session.length", sessionLength))

	acts, err := c.generate(ctx, brief, sessionLength)
	if err != nil {
		if errors.Is(err, practice.ErrCancelled) {
			span.SetStatus(codes.Unset, "cancelled")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("activities.count", len(acts)))
	return acts, nil
}

func (c *client) generate(ctx context.Context, brief string, sessionLength int) ([]practice.Activity, error) {
	body := generateRequest{SkillSummary: brief, SessionLength: sessionLength}
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			// the call may have resolved after the caller gave up on it
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, practice.ErrCancelled
			}
			return c.parse(raw)
		}
		if cerr := ctxErr(ctx); cerr != nil {
			if errors.Is(cerr, practice.ErrCancelled) {
				return nil, cerr
			}
			return nil, err
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Generation request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if serr := httpx.Sleep(ctx, sleepFor); serr != nil {
			return nil, ctxErr(ctx)
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("unreachable retry loop")
}

// ctxErr maps a finished context onto the domain taxonomy: cancellation
// means superseded, a deadline is an ordinary remote failure.
func ctxErr(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return practice.ErrCancelled
	default:
		return practice.NewRemoteGenerationError(0, "generation request timed out", err)
	}
}

func (c *client) doOnce(ctx context.Context, body generateRequest) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, nil, practice.NewRemoteGenerationError(0, "invalid generation endpoint", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, practice.NewRemoteGenerationError(0, "generation request timed out", err)
		}
		return nil, nil, practice.NewRemoteGenerationError(0, "", err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, practice.NewRemoteGenerationError(resp.StatusCode, "", readErr)
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		return resp, raw, practice.NewRemoteGenerationError(resp.StatusCode, strings.TrimSpace(er.Message), nil)
	}
	return resp, raw, nil
}

// parse converts the payload and assigns ids of the form
// activity-<unix millis>-<index>.
func (c *client) parse(raw []byte) ([]practice.Activity, error) {
	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, practice.NewRemoteGenerationError(http.StatusOK, "undecodable generation response", err)
	}
	if len(out.Activities) == 0 {
		return nil, &practice.ValidationError{Index: -1, Field: "activities", Reason: "empty"}
	}

	stamp := c.now().UnixMilli()
	acts := make([]practice.Activity, 0, len(out.Activities))
	for i, w := range out.Activities {
		kind := strings.TrimSpace(w.Kind)
		if kind == "" {
			kind = strings.TrimSpace(w.Type)
		}
		if w.Duration == nil {
			return nil, &practice.ValidationError{Index: i, Field: "duration", Reason: "missing"}
		}
		if *w.Duration > practice.MaxActivityDuration {
			return nil, &practice.ValidationError{Index: i, Field: "duration", Reason: fmt.Sprintf("exceeds %d minutes", practice.MaxActivityDuration)}
		}
		suggestions := w.Suggestions
		if suggestions == nil {
			suggestions = []string{}
		}
		a := practice.Activity{
			ID:               fmt.Sprintf("activity-%d-%d", stamp, i),
			Kind:             practice.ActivityKind(kind),
			SourceExerciseID: w.SourceExerciseID,
			SourcePieceID:    w.SourcePieceID,
			SourceGoalID:     w.SourceGoalID,
			Title:            strings.TrimSpace(w.Title),
			Description:      strings.TrimSpace(w.Description),
			Duration:         int(math.Round(*w.Duration)),
			Suggestions:      suggestions,
		}
		if err := a.Validate(i); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, nil
}
