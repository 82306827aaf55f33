package voice_routers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/voicebankai/config"
	"github.com/voicebankai/pkg/commons"
)

type stubCollectApi struct {
	hits map[string]int
}

func (s *stubCollectApi) record(name string, c *gin.Context) {
	s.hits[name]++
	c.JSON(http.StatusOK, gin.H{"handler": name})
}

func (s *stubCollectApi) Proxy(c *gin.Context)           { s.record("proxy", c) }
func (s *stubCollectApi) Ingest(c *gin.Context)          { s.record("ingest", c) }
func (s *stubCollectApi) ListRecordings(c *gin.Context)  { s.record("list", c) }
func (s *stubCollectApi) Stats(c *gin.Context)           { s.record("stats", c) }
func (s *stubCollectApi) PurgeRecordings(c *gin.Context) { s.record("purge", c) }
func (s *stubCollectApi) Health(c *gin.Context)          { s.record("health", c) }

func newTestEngine(t *testing.T) (*gin.Engine, *stubCollectApi) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-router"),
		commons.Level("debug"),
	)
	require.NoError(t, err)

	stub := &stubCollectApi{hits: map[string]int{}}
	engine := gin.New()
	CollectApiRoutes(&config.AppConfig{}, engine, logger, stub)
	return engine, stub
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(method, path, nil))
	return recorder
}

func TestRoutesDispatch(t *testing.T) {
	engine, stub := newTestEngine(t)
	tests := []struct {
		method  string
		path    string
		handler string
	}{
		{http.MethodPost, "/api/proxy", "proxy"},
		{http.MethodPost, "/api/recordings", "ingest"},
		{http.MethodGet, "/api/recordings", "list"},
		{http.MethodDelete, "/api/recordings", "purge"},
		{http.MethodGet, "/api/stats", "stats"},
		{http.MethodGet, "/api/health", "health"},
	}
	for _, tt := range tests {
		recorder := serve(engine, tt.method, tt.path)
		require.Equal(t, http.StatusOK, recorder.Code, "%s %s", tt.method, tt.path)
		require.Equal(t, 1, stub.hits[tt.handler], "%s %s", tt.method, tt.path)
	}
}

func TestUnknownRouteAnswers404(t *testing.T) {
	engine, _ := newTestEngine(t)
	recorder := serve(engine, http.MethodGet, "/api/nope")

	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Endpoint not found")
}

func TestWrongMethodAnswers405(t *testing.T) {
	engine, _ := newTestEngine(t)
	recorder := serve(engine, http.MethodGet, "/api/proxy")

	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Method not allowed")
}

func TestCORSHeadersPresent(t *testing.T) {
	engine, _ := newTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
