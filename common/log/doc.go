// Package log defines the logging interface shared by every package in this
// module together with typed logging fields.
//
// Library code accepts a Logger and falls back to NewNop when none is given.
// The zap package provides the production implementation.
package log
