package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/errors"
)

const keyErrorKind = attribute.Key("error.kind")

// RecordError marks span as failed. Errors wrapping a storefront sentinel
// also carry it as the error.kind attribute.
func RecordError(err error, span trace.Span) {
	if err == nil || !span.IsRecording() {
		return
	}
	options := []trace.EventOption{trace.WithStackTrace(true)}
	if kind := errors.Kind(err); kind != "" {
		options = append(options, trace.WithAttributes(keyErrorKind.String(kind)))
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
