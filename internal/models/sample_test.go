package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/activitymon/pkg/window"
)

func TestNewSample(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := NewSample(window.Snapshot{AppName: "Code", WindowTitle: "main.go"}, 2500*time.Millisecond, at)

	assert.Equal(t, "Code", s.AppName)
	assert.Equal(t, "main.go", s.WindowTitle)
	assert.Equal(t, 2.5, s.IdleSeconds)
	assert.Equal(t, int64(1700000000), s.Timestamp)
}

func TestNewSampleClampsNegativeIdle(t *testing.T) {
	s := NewSample(window.Snapshot{}, -time.Second, time.Now())
	assert.Equal(t, 0.0, s.IdleSeconds)
}

func TestSampleJSONNames(t *testing.T) {
	data, err := json.Marshal(Sample{AppName: "Code", WindowTitle: "main.go", IdleSeconds: 1, Timestamp: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active_app":"Code","window_title":"main.go","idle_time":1,"timestamp":5}`, string(data))
}

func TestIdentityComplete(t *testing.T) {
	assert.True(t, Identity{UserID: "alice", TeamID: "team-1", Token: "tok"}.Complete())
	assert.False(t, Identity{UserID: "alice", TeamID: "team-1"}.Complete())
	assert.False(t, Identity{}.Complete())
}

func TestIdentityTokenNotSerialized(t *testing.T) {
	data, err := json.Marshal(Identity{UserID: "alice", TeamID: "team-1", Token: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
