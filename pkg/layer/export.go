package layer

import (
	"context"
	"fmt"
	"time"

	"github.com/stleox/seetrace/pkg/registry"
	attr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktr "go.opentelemetry.io/otel/sdk/trace"
	tr "go.opentelemetry.io/otel/trace"
)

// Export turns closed spans into OTel spans. One of the Init methods must
// run before the layer is composed; until then every callback is a no-op.
type Export struct {
	Base
	tracerProvider *sdktr.TracerProvider
	tracer         tr.Tracer
}

func NewExport() *Export {
	return &Export{}
}

func (e *Export) InitGRPCExporter(shutdownCtx context.Context) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(shutdownCtx)
	if err != nil {
		return nil, fmt.Errorf("creating gRPC exporter: %w", err)
	}

	e.tracerProvider = sdktr.NewTracerProvider(
		sdktr.WithBatcher(exporter),
		sdktr.WithResource(resource.Empty()))
	e.tracer = e.tracerProvider.Tracer("seetrace")

	return e.tracerProvider.Shutdown, nil
}

func (e *Export) InitStdoutExporter() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating stdout exporter: %w", err)
	}

	e.tracerProvider = sdktr.NewTracerProvider(
		sdktr.WithBatcher(exporter),
		sdktr.WithResource(resource.Empty()))
	e.tracer = e.tracerProvider.Tracer("seetrace")

	return e.tracerProvider.Shutdown, nil
}

// InitDummyExporter only for testing purposes
func (e *Export) InitDummyExporter() (func(context.Context) error, error) {
	e.tracerProvider = sdktr.NewTracerProvider(
		sdktr.WithResource(resource.NewSchemaless(attr.Bool("debug", true))),
	)
	e.tracer = e.tracerProvider.Tracer("seetrace")
	return e.tracerProvider.Shutdown, nil
}

func (e *Export) OnClose(id registry.SpanID, rec *registry.Record) {
	if e.tracer == nil {
		return
	}
	md := rec.Metadata()

	startOpts := make([]tr.SpanStartOption, 0, 3+len(rec.Fields()))
	startOpts = append(startOpts, tr.WithTimestamp(rec.Start()))
	startOpts = append(startOpts, tr.WithAttributes(attr.String("target", md.Target)))
	startOpts = append(startOpts, tr.WithAttributes(attr.String("level", md.Level.String())))
	if rec.Parent().Valid() {
		startOpts = append(startOpts, tr.WithAttributes(attr.String("parent", rec.Parent().String())))
	}
	for k, v := range rec.Fields() {
		startOpts = append(startOpts, tr.WithAttributes(attr.String(k, v)))
	}

	_, span := e.tracer.Start(context.Background(), md.Name, startOpts...)
	span.End(tr.WithTimestamp(time.Now()))
}
