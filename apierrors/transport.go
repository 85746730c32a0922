package apierrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// Transport wraps a failure of the HTTP round trip itself, telling an unreachable server apart
// from every other way a request can fail to complete.
func Transport(op Op, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ES(op, KTransport, "request timed out: %v", err)
	case errors.Is(err, context.Canceled):
		return ES(op, KTransport, "request cancelled: %v", err)
	case isUnreachable(err):
		return ES(op, KTransport, "server unreachable: %v", err)
	}
	return ES(op, KTransport, "request could not be completed: %v", err)
}

func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var inner *net.OpError
		return errors.As(urlErr.Err, &inner) && inner.Op == "dial"
	}
	return false
}
