package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const SpanPrefix = "UC."

// Instrument emits the RED signals shared by every use case of a service:
// one span, usecase_requests_total{use_case,outcome},
// usecase_duration_seconds{use_case} and a use_case_done log line.
type Instrument struct {
	tel observability.Observability
	log observability.Logger

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewInstrument(service string, tel observability.Observability) *Instrument {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Instrument{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (i *Instrument) Logger() observability.Logger { return i.log }

func (i *Instrument) Tracer() observability.Tracer { return i.tel.Tracer() }

func (i *Instrument) Metrics() observability.Metrics { return i.tel.Metrics() }

// Run tracks a single use case execution until End is called.
type Run struct {
	inst    *Instrument
	ctx     context.Context
	span    trace.Span
	logger  observability.Logger
	useCase string
	start   time.Time
	status  string
	fields  []observability.Field
}

func (i *Instrument) Start(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	ctx, logger := logctx.Enrich(ctx, i.log, observability.F("use_case", useCase))
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := i.tel.Tracer().Start(ctx, SpanPrefix+spanName, attrs...)
	return ctx, &Run{
		inst:    i,
		ctx:     ctx,
		span:    span,
		logger:  logger,
		useCase: useCase,
		start:   time.Now(),
	}
}

func (r *Run) Span() trace.Span { return r.span }

// Annotate adds fields to the final use_case_done line.
func (r *Run) Annotate(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// SetStatus overrides the status text derived from the returned error.
func (r *Run) SetStatus(status string) {
	r.status = status
}

func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()

	outcome, statusText := "success", r.status
	if statusText == "" {
		statusText = StatusText(err)
	}
	if err != nil {
		outcome = "error"
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, statusText)
		} else {
			r.span.SetStatus(codes.Ok, statusText)
		}
		r.span.End()
	}

	r.inst.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", outcome),
	)
	r.inst.durHistogram.Observe(lat,
		observability.L("use_case", r.useCase),
	)

	fields := append([]observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}, r.fields...)
	fields = append(fields, observability.TraceFields(r.ctx)...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}

	if _, domainErr := apperror.As(err); err != nil && !domainErr {
		r.logger.Error("use_case_done", fields...)
		return
	}
	r.logger.Info("use_case_done", fields...)
}
