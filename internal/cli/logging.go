package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// newLogger builds a logfmt logger writing to w that lets through records
// at or above the named level.
func newLogger(w io.Writer, name string) (log.Logger, error) {
	var allow level.Option
	switch strings.ToLower(name) {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn", "warning":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	case "none", "off":
		return log.NewNopLogger(), nil
	default:
		return nil, fmt.Errorf("unknown log level %q", name)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}
