// Package reporter submits activity samples to the team backend.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
)

// maxErrorBody bounds how much of a rejected response body is kept.
const maxErrorBody = 4 << 10

// RemoteRejectedError is returned when the backend answers with a non-2xx
// status.
type RemoteRejectedError struct {
	Status int
	Body   string
}

func (e *RemoteRejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote rejected activity: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("remote rejected activity: %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Detail
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// payload is the body accepted by POST /api/teams/{team}/activity. The
// productivity fields are computed downstream and always sent as zero.
type payload struct {
	UserID            string  `json:"userId"`
	ActiveApp         string  `json:"activeApp"`
	WindowTitle       string  `json:"windowTitle"`
	IdleTime          float64 `json:"idleTime"`
	ProductiveHours   float64 `json:"productiveHours"`
	UnproductiveHours float64 `json:"unproductiveHours"`
	GoalsCompleted    int     `json:"goalsCompleted"`
}

// Config holds reporter settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Reporter performs one authenticated POST per sample. It keeps no state
// between calls and never retries.
type Reporter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Reporter.
func New(cfg Config, logger *zap.Logger) *Reporter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Reporter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Endpoint returns the activity URL for team.
func (r *Reporter) Endpoint(teamID string) string {
	return fmt.Sprintf("%s/api/teams/%s/activity", r.baseURL, url.PathEscape(teamID))
}

// Report submits sample on behalf of identity.
func (r *Reporter) Report(ctx context.Context, identity models.Identity, sample models.Sample) error {
	body, err := json.Marshal(payload{
		UserID:      identity.UserID,
		ActiveApp:   sample.AppName,
		WindowTitle: sample.WindowTitle,
		IdleTime:    sample.IdleSeconds,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal activity payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint(identity.TeamID), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create activity request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+identity.Token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &TransportError{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		r.logger.Debug("activity submitted",
			zap.String("team_id", identity.TeamID),
			zap.String("app", sample.AppName),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	return &RemoteRejectedError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
}
