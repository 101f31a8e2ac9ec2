package reporter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
)

var (
	alice  = models.Identity{UserID: "alice", TeamID: "team-1", Token: "tok-abc"}
	sample = models.Sample{AppName: "Code", WindowTitle: "main.rs", IdleSeconds: 2.5, Timestamp: 1700000000}
)

func TestReportSendsContract(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotType   string
		gotMethod string
		gotBody   map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	r := New(Config{BaseURL: srv.URL + "/"}, zap.NewNop())
	require.NoError(t, r.Report(context.Background(), alice, sample))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/teams/team-1/activity", gotPath)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "application/json", gotType)

	assert.Equal(t, "alice", gotBody["userId"])
	assert.Equal(t, "Code", gotBody["activeApp"])
	assert.Equal(t, "main.rs", gotBody["windowTitle"])
	assert.Equal(t, 2.5, gotBody["idleTime"])
	assert.Equal(t, 0.0, gotBody["productiveHours"])
	assert.Equal(t, 0.0, gotBody["unproductiveHours"])
	assert.Equal(t, 0.0, gotBody["goalsCompleted"])
	assert.Len(t, gotBody, 7)
}

func TestReportRemoteRejected(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := New(Config{BaseURL: srv.URL}, zap.NewNop()).Report(context.Background(), alice, sample)
	require.Error(t, err)

	var rejected *RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusUnauthorized, rejected.Status)
	assert.Equal(t, "invalid token", rejected.Body)
	assert.Equal(t, 1, calls, "no retry on rejection")
}

func TestReportServerErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(Config{BaseURL: srv.URL}, zap.NewNop()).Report(context.Background(), alice, sample)

	var rejected *RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusServiceUnavailable, rejected.Status)
	assert.Equal(t, 1, calls)
}

func TestReportTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(Config{BaseURL: url, Timeout: time.Second}, zap.NewNop()).Report(context.Background(), alice, sample)
	require.Error(t, err)

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.NotEmpty(t, transport.Detail)
}

func TestEndpointEscapesTeam(t *testing.T) {
	r := New(Config{BaseURL: "https://backend.example"}, zap.NewNop())
	assert.Equal(t, "https://backend.example/api/teams/team%2F1/activity", r.Endpoint("team/1"))
}
