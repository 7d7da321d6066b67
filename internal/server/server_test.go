package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/parroquia-maps/internal/fixture"
	"github.com/sells-group/parroquia-maps/internal/geo"
	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/view"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	d, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	b := &view.Builder{
		Loader:         parish.NewLoader(d.Sources()),
		GrowthPath:     d.Growth,
		PopulationPath: d.Population,
		SectorConfig:   d.Sectors,
		Projection:     geo.MetricProjection(),
	}
	ts := httptest.NewServer(New(b, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestListViews(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/views")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"views":["growth","population","sectors","clusters"]}`, string(body))
}

func TestGetView_Sectors(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/views/sectors?scope=urbanas")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	var doc struct {
		Type     string `json:"type"`
		Scope    string `json:"scope"`
		Zoom     int    `json:"zoom"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Equal(t, "urbanas", doc.Scope)
	assert.Equal(t, 11, doc.Zoom)

	sectors := map[string]any{}
	for _, f := range doc.Features {
		sectors[f.Properties["name"].(string)] = f.Properties["sector"]
	}
	assert.Equal(t, map[string]any{
		"QUITUMBE":         "SUR",
		"CENTRO HISTÓRICO": "CENTRO",
		"CARCELÉN":         "NORTE",
	}, sectors)
}

func TestGetView_Growth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/views/growth?scope=rurales")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"2.50%"`)
	assert.Contains(t, string(body), `"transparent"`)
}

func TestGetView_BadRequests(t *testing.T) {
	ts := newTestServer(t, Options{MaxK: 5})

	tests := []struct {
		path   string
		status int
	}{
		{"/api/views/heatmap", http.StatusNotFound},
		{"/api/views/sectors?scope=otras", http.StatusBadRequest},
		{"/api/views/clusters?k=abc", http.StatusBadRequest},
		{"/api/views/clusters?k=0", http.StatusBadRequest},
		{"/api/views/clusters?k=6", http.StatusBadRequest},
		{"/api/sectors/explain?scope=nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestExplain(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := get(t, ts.URL+"/api/sectors/explain?scope=todas")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Scope    string             `json:"scope"`
		Parishes []view.Explanation `json:"parishes"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "todas", doc.Scope)
	require.Len(t, doc.Parishes, 8)
	assert.Equal(t, "VALLE_SUR", doc.Parishes[5].Match.Sector)
	assert.Equal(t, "SANGOLQUI|TIPO:URBANO", doc.Parishes[5].Match.Key)
}

type failingViews struct{}

func (failingViews) Build(context.Context, string, parish.Scope, int) (*view.Table, error) {
	return nil, errors.New("layer missing")
}

func (failingViews) Explain(context.Context, parish.Scope) ([]view.Explanation, error) {
	return nil, errors.New("layer missing")
}

func TestViewFailureIs500(t *testing.T) {
	srv := New(failingViews{}, Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/views/population")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "layer missing")

	resp, _ = get(t, ts.URL+"/api/sectors/explain")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, metrics := get(t, ts.URL+"/metrics")
	assert.Contains(t, string(metrics), `parroquias_view_builds_total{outcome="error",view="population"} 1`)
	assert.Contains(t, string(metrics), `parroquias_http_requests_total{route="/api/views/{view}",status="500"} 1`)
}

func TestRateLimit(t *testing.T) {
	srv := New(failingViews{}, Options{RateLimit: 0.001, RateBurst: 1})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/api/views")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/views")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	resp, _ = get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not rate limited")
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Options{CORSOrigins: []string{"https://mapas.example.org"}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://mapas.example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "https://mapas.example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://otro.example.org")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- New(failingViews{}, Options{}).Run(ctx, "127.0.0.1:0") }()
	cancel()
	err := <-errCh
	if err != nil {
		assert.False(t, strings.Contains(err.Error(), "listen"), err.Error())
	}
}
