package log

import (
	"context"
	"fmt"
	"strings"
)

var controlCharReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// SanitizeString escapes newlines, carriage returns and tabs so a value
// cannot forge additional log lines (CWE-117).
func SanitizeString(s string) string {
	return controlCharReplacer.Replace(s)
}

// SafeError logs err at error level. When production is true only the error
// type is logged, since driver and SDK errors can echo connection details.
func SafeError(ctx context.Context, logger Logger, msg string, err error, production bool) {
	if logger == nil || err == nil {
		return
	}

	if !logger.Enabled(LevelError) {
		return
	}

	if production {
		logger.Log(ctx, LevelError, msg, String("error_type", fmt.Sprintf("%T", err)))
		return
	}

	logger.Log(ctx, LevelError, msg, Err(err))
}
