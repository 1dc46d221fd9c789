// SPDX-License-Identifier: GPL-3.0-or-later

package connector

import (
	"net"
	"time"

	"github.com/mxinden/happyeyeballs-go/errclass"
	"github.com/mxinden/happyeyeballs-go/xlog"
)

// Config holds common configuration for connector operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*ConnectFunc] for TCP (H1/H2/H2OrH1) endpoints.
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// QUICDialer is used by [*QUICDialFunc] for H3 endpoints.
	//
	// Set by [NewConfig] to [DefaultQUICDialer].
	QUICDialer QUICDialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to wrap [errclass.Classify].
	ErrClassifier xlog.ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:        &net.Dialer{},
		QUICDialer:    DefaultQUICDialer{},
		ErrClassifier: xlog.ErrClassifierFunc(errclass.Classify),
		TimeNow:       time.Now,
	}
}
