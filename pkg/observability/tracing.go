package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray subsegments. A nil Tracer, or a context without a parent segment, traces nothing.
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// StartSubsegment starts a subsegment under the segment in ctx.
// The returned end function is always safe to call.
func (t *Tracer) StartSubsegment(ctx context.Context, name string) (context.Context, func(err error)) {
	if t == nil || xray.GetSegment(ctx) == nil {
		return ctx, func(error) {}
	}

	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	if seg == nil {
		return ctx, func(error) {}
	}
	return ctx, func(err error) {
		if err != nil {
			_ = seg.AddError(err)
		}
		seg.Close(err)
	}
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if t == nil {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// RecordError records an error in the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if t == nil || err == nil {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddError(err)
	}
}
