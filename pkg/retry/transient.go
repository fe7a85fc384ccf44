package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Error fragments reported by RPC nodes and the order signer that clear up on retry.
var transientMarkers = []string{
	"call_exception",
	"server_error",
	"missing revert data",
	"header not found",
	"timeout",
	"timed out",
	"connection reset",
	"econnreset",
}

// IsTransient reports whether err is a timeout, a rate limit, a server error or a known
// flaky node response.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && !isNetError(err) {
		return temporary.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

func isNetError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
