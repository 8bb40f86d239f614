// Package telemetry wraps OpenTelemetry SDK initialization, giving the
// module a single place to configure the TracerProvider and MeterProvider,
// and provides the RunTracer that turns runner events into spans. When
// telemetry is disabled the globals stay noop and nothing connects out.
package telemetry
