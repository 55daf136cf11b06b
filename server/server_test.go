package server

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmach/profile"
	"github.com/paulmach/profile/internal/testutil"
)

const lineString = `{"type":"LineString","coordinates":[[-105.3,39.9],[-105.2,40.0]]}`

func newTestServer(t *testing.T, sampler profile.ElevationSampler) (*Server, *httptest.Server) {
	t.Helper()

	s := New(Config{
		Sampler:       sampler,
		MinPointCount: 50,
		Logger:        testutil.NewLogger(t),
	})

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return s, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp := do(t, http.MethodPost, ts.URL+"/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[ProfileResponse](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "empty", created.State)
	assert.Len(t, created.Samples, 5)
	assert.Nil(t, created.Summary)

	return created.ID
}

func TestSessionLifecycle(t *testing.T) {
	s, ts := newTestServer(t, profile.FlatSampler(1500))
	id := createSession(t, ts)
	base := ts.URL + "/sessions/" + id
	assert.Equal(t, 1, s.SessionCount())

	resp := do(t, http.MethodPut, base+"/path", lineString)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decode[ProfileResponse](t, resp)
	assert.Equal(t, "active", updated.State)
	assert.GreaterOrEqual(t, len(updated.Samples), 50)
	require.NotNil(t, updated.Summary)
	assert.Equal(t, 1500.0, updated.Summary.MinElevation)
	assert.Contains(t, updated.Details, "first: 1,500.0")

	resp = do(t, http.MethodGet, base+"/profile", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", decode[ProfileResponse](t, resp).State)

	resp = do(t, http.MethodDelete, base+"/path", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := decode[ProfileResponse](t, resp)
	assert.Equal(t, "empty", cleared.State)
	assert.Len(t, cleared.Samples, 5)
	assert.Nil(t, cleared.Summary)

	resp = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, s.SessionCount())

	resp = do(t, http.MethodGet, base+"/profile", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionNotFound(t *testing.T) {
	_, ts := newTestServer(t, profile.FlatSampler(0))

	for _, id := range []string{"nope", "2b1c6a5e-1a51-4c0e-9a44-3f7c5c2d9e10"} {
		resp := do(t, http.MethodGet, ts.URL+"/sessions/"+id+"/profile", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "session not found", decode[errorResponse](t, resp).Error)
	}
}

func TestSetPathBadInput(t *testing.T) {
	_, ts := newTestServer(t, profile.FlatSampler(0))
	base := ts.URL + "/sessions/" + createSession(t, ts)

	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "point", body: `{"type":"Point","coordinates":[1,2]}`},
		{name: "empty line", body: `{"type":"LineString","coordinates":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, base+"/path", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[errorResponse](t, resp).Error)
		})
	}

	resp := do(t, http.MethodGet, base+"/profile", "")
	assert.Equal(t, "empty", decode[ProfileResponse](t, resp).State)
}

func TestSetPathPipelineFailure(t *testing.T) {
	// without a sampler the pipeline cannot run
	_, ts := newTestServer(t, nil)
	base := ts.URL + "/sessions/" + createSession(t, ts)

	resp := do(t, http.MethodPut, base+"/path", lineString)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// the placeholder is still shown
	resp = do(t, http.MethodGet, base+"/profile", "")
	got := decode[ProfileResponse](t, resp)
	assert.Equal(t, "empty", got.State)
	assert.Len(t, got.Samples, 5)
}

func TestChartEndpoints(t *testing.T) {
	_, ts := newTestServer(t, profile.FlatSampler(10))
	base := ts.URL + "/sessions/" + createSession(t, ts)

	resp := do(t, http.MethodGet, base+"/chart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "echarts")

	resp = do(t, http.MethodGet, base+"/chart.png?width=320&height=160", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())

	resp = do(t, http.MethodGet, base+"/chart.png?width=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndicator(t *testing.T) {
	_, ts := newTestServer(t, profile.FlatSampler(10))
	base := ts.URL + "/sessions/" + createSession(t, ts)

	resp := do(t, http.MethodGet, base+"/indicator?distance=10", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPut, base+"/path", lineString)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/indicator?distance=0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sample := decode[profile.Sample](t, resp)
	assert.Equal(t, 0.0, sample.Distance)
	assert.Equal(t, 10.0, sample.Elevation)
	assert.InDelta(t, -105.3, sample.Coordinate.X(), 1e-9)

	resp = do(t, http.MethodGet, base+"/indicator?distance=far", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportKML(t *testing.T) {
	_, ts := newTestServer(t, profile.FlatSampler(10))
	base := ts.URL + "/sessions/" + createSession(t, ts)

	resp := do(t, http.MethodGet, base+"/export.kml", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	multi := `{"type":"MultiLineString","coordinates":[[[0,0],[0,0.01]],[[1,1],[1,1.01]]]}`
	resp = do(t, http.MethodPut, base+"/path", multi)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/export.kml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "<Placemark>"))
	assert.Contains(t, string(body), "absolute")
}

func TestAnnotatedFromSamples(t *testing.T) {
	samples := []profile.Sample{
		{Index: 0, Coordinate: profile.NewVertex(0, 0, 1, 0)},
		{Index: 1, Coordinate: profile.NewVertex(0, 1, 2, 10)},
		{Index: 0, Coordinate: profile.NewVertex(5, 5, 3, 0)},
	}

	annotated := annotatedFromSamples(samples)
	require.Len(t, annotated, 2)
	assert.Len(t, annotated[0], 2)
	assert.Len(t, annotated[1], 1)
	assert.Equal(t, 3.0, annotated[1][0].Elevation())

	assert.Empty(t, annotatedFromSamples(nil))
}

func TestServeShutdown(t *testing.T) {
	s := New(Config{
		Addr:    "127.0.0.1:0",
		Sampler: profile.FlatSampler(0),
		Logger:  testutil.NewLogger(t),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			assert.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestExpireSessions(t *testing.T) {
	s := New(Config{
		Sampler:    profile.FlatSampler(0),
		SessionTTL: time.Minute,
		Logger:     testutil.NewLogger(t),
	})

	idle := s.newSession()
	active := s.newSession()
	require.Equal(t, 2, s.SessionCount())

	now := time.Now()
	assert.Zero(t, s.expireSessions(now))

	active.touch(now.Add(50 * time.Second))
	assert.Equal(t, 1, s.expireSessions(now.Add(90*time.Second)))
	assert.Equal(t, 1, s.SessionCount())

	_, ok := s.session(idle.id)
	assert.False(t, ok)
	_, ok = s.session(active.id)
	assert.True(t, ok)

	assert.Equal(t, 1, s.expireSessions(now.Add(time.Hour)))
	assert.Zero(t, s.SessionCount())
}

func TestRequestsKeepSessionAlive(t *testing.T) {
	s, ts := newTestServer(t, profile.FlatSampler(0))
	id := createSession(t, ts)

	sess, ok := s.session(uuidMust(t, id))
	require.True(t, ok)
	sess.touch(time.Now().Add(-2 * DefaultSessionTTL))

	resp := do(t, http.MethodGet, ts.URL+"/sessions/"+id+"/profile", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Zero(t, s.expireSessions(time.Now()))
	assert.Equal(t, 1, s.SessionCount())
}

func TestPlanarSessions(t *testing.T) {
	s := New(Config{
		Sampler:       profile.FlatSampler(0),
		MinPointCount: 50,
		Planar:        true,
		Logger:        testutil.NewLogger(t),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	base := ts.URL + "/sessions/" + createSession(t, ts)
	resp := do(t, http.MethodPut, base+"/path", lineString)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// about 14 km, in meters not degrees
	got := decode[ProfileResponse](t, resp)
	require.NotNil(t, got.Summary)
	assert.InDelta(t, 14000, got.Summary.MaxDistance, 1500)
}

func uuidMust(t *testing.T, id string) uuid.UUID {
	t.Helper()

	u, err := uuid.Parse(id)
	require.NoError(t, err)
	return u
}
