package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCloudWatch struct {
	mock.Mock
}

func (m *MockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestMetricsRecordDispatch(t *testing.T) {
	client := new(MockCloudWatch)
	client.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return aws.ToString(in.Namespace) == "Archive" && len(in.MetricData) == 2
	})).Return(errors.New("throttled"))

	m := NewMetrics("Archive", client, zap.NewNop())
	m.RecordDispatch(context.Background(), Dispatch{Module: "archive", Action: "getArticle", Status: 200, Duration: time.Millisecond})

	client.AssertExpectations(t)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDispatch(context.Background(), Dispatch{})
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector("archive")
	var r Recorder = MultiRecorder{c, NopRecorder{}}

	r.RecordDispatch(context.Background(), Dispatch{Module: "archive", Action: "getArticle", Status: 200, Duration: time.Millisecond})
	r.RecordDispatch(context.Background(), Dispatch{Module: "archive", Action: "getArticle", Status: 200})

	assert.Equal(t, float64(2), testutil.ToFloat64(c.Requests.WithLabelValues("archive", "getArticle", "200")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "archive_actions_total")
}

func TestTracerWithoutSegment(t *testing.T) {
	var nilTracer *Tracer
	for _, tr := range []*Tracer{nilTracer, NewTracer("archive")} {
		ctx, end := tr.StartSubsegment(context.Background(), "dispatch")
		assert.NotNil(t, ctx)
		assert.NotPanics(t, func() {
			end(errors.New("boom"))
			tr.AddAnnotation(ctx, "module", "archive")
			tr.RecordError(ctx, errors.New("boom"))
		})
	}
}
