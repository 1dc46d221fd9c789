//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies network errors into short categorical
// strings suitable for structured logging and metrics, independent of
// the exact wording of the underlying OS error message.
package errclass

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Categorical error strings returned by [Classify].
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECANCELED       = "ECANCELED"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EEOF            = "EEOF"
	EGENERIC        = "EGENERIC"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
)

// Classify maps err to a short categorical string.
//
// The mapping prefers, in order: context errors, platform errno values
// (see unix.go/windows.go), [net.Error] timeouts, then a generic fallback
// for anything else. Returns "" for a nil error.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return ECANCELED
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ETIMEDOUT
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if class, ok := classifyErrno(errno); ok {
			return class
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}

	return EGENERIC
}

func classifyErrno(errno syscall.Errno) (string, bool) {
	switch errno {
	case syscall.Errno(errEADDRNOTAVAIL):
		return EADDRNOTAVAIL, true
	case syscall.Errno(errEADDRINUSE):
		return EADDRINUSE, true
	case syscall.Errno(errECONNABORTED):
		return ECONNABORTED, true
	case syscall.Errno(errECONNREFUSED):
		return ECONNREFUSED, true
	case syscall.Errno(errECONNRESET):
		return ECONNRESET, true
	case syscall.Errno(errEHOSTUNREACH):
		return EHOSTUNREACH, true
	case syscall.Errno(errEINVAL):
		return EINVAL, true
	case syscall.Errno(errEINTR):
		return EINTR, true
	case syscall.Errno(errENETDOWN):
		return ENETDOWN, true
	case syscall.Errno(errENETUNREACH):
		return ENETUNREACH, true
	case syscall.Errno(errENOBUFS):
		return ENOBUFS, true
	case syscall.Errno(errENOTCONN):
		return ENOTCONN, true
	case syscall.Errno(errEPROTONOSUPPORT):
		return EPROTONOSUPPORT, true
	case syscall.Errno(errETIMEDOUT):
		return ETIMEDOUT, true
	default:
		return "", false
	}
}
