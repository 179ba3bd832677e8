package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(events.APIGatewayProxyResponse), args.Error(1)
}

func TestDispatchForwardsRequest(t *testing.T) {
	// Arrange
	h := new(MockEventHandler)
	h.On("Handle", mock.Anything, mock.MatchedBy(func(req events.APIGatewayProxyRequest) bool {
		return req.HTTPMethod == http.MethodPost &&
			req.Body == `{"module":"archive"}` &&
			req.Headers["Authorization"] == "Bearer tok" &&
			req.RequestContext.RequestID != ""
	})).Return(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"status":404}`,
	}, nil)
	router := NewRouter(h, nil, zap.NewNop()).Setup()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"module":"archive"}`))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `{"status":404}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	h.AssertExpectations(t)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("archive_actions_total 1"))
	})
	router := NewRouter(new(MockEventHandler), metrics, zap.NewNop()).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "archive_actions_total")
}

func TestMetricsRouteIsOptional(t *testing.T) {
	router := NewRouter(new(MockEventHandler), nil, zap.NewNop()).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(new(MockEventHandler), nil, zap.NewNop()).Setup()

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://archive.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
