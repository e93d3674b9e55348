// Package zap implements log.Logger on top of go.uber.org/zap.
//
// Entries logged with a context carrying an OpenTelemetry span get trace_id
// and span_id fields so CLI and service logs correlate with traces.
package zap
