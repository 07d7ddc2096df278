package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/tickfsm/internal/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Inspectors = []string{config.InspectorMetrics}
	def, err := trafficLight()
	require.NoError(t, err)
	a, err := buildApp(&cfg, def)
	require.NoError(t, err)
	return a
}

func TestRouter(t *testing.T) {
	a := newTestApp(t)
	h := newRouter(a)

	// Step instead of the tick loop keeps the test deterministic
	require.NoError(t, a.runtime.Step(0))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body statesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "traffic-light", body.Machine)
	assert.Equal(t, []string{"red", "normal"}, toStrings(body.States))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/fault", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NoError(t, a.runtime.Step(0))
	assert.Equal(t, []string{"red", "flashing"}, toStrings(a.runtime.CurrentStates()))

	// the red timer is interrupted while flashing
	require.NoError(t, a.runtime.Step(3*time.Second))
	assert.Equal(t, []string{"red", "flashing"}, toStrings(a.runtime.CurrentStates()))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dot", nil))
	assert.Contains(t, rec.Body.String(), `"flashing" [label="flashing" style=filled fillcolor=lightgreen color=red]`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/next", strings.NewReader("{bad")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tickfsm_dispatches_total")
}

func TestTrafficLightCycle(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.runtime.Step(0))

	for _, want := range []string{"green", "yellow", "red"} {
		d := 3 * time.Second
		if want == "red" {
			d = time.Second
		}
		require.NoError(t, a.runtime.Step(d))
		assert.Equal(t, want, string(a.runtime.CurrentStates()[0]))
	}
	assert.Equal(t, 3, a.machine.Context().Int("transitions"))
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
