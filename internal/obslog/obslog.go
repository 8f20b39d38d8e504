// Package obslog is the engine's structured logging and error-aggregation
// layer: a logrus wrapper that stamps every exchange/connection log line
// with the identifiers needed to correlate a request's lifecycle, plus
// helpers for wrapping and aggregating the errors the exchange engine
// collects during teardown.
package obslog

import (
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry pre-populated with connection-scoped fields.
type Logger struct {
	entry *logrus.Entry
}

// New builds a root logger. Callers typically hold one per process and
// derive connection/exchange-scoped children from it with WithConn.
func New() *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{entry: logrus.NewEntry(base)}
}

// NewExchangeID mints the correlation id stamped on every log line and
// metric sample for one request/response exchange.
func NewExchangeID() string {
	return uuid.NewString()
}

// WithConn returns a child logger scoped to one connection.
func (l *Logger) WithConn(connID string) *Logger {
	return &Logger{entry: l.entry.WithField("conn_id", connID)}
}

// WithExchange returns a child logger scoped to one exchange on a
// connection.
func (l *Logger) WithExchange(exchangeID string) *Logger {
	return &Logger{entry: l.entry.WithField("exchange_id", exchangeID)}
}

// StateTransition logs a state-machine transition at debug level.
func (l *Logger) StateTransition(from, to string) {
	l.entry.WithFields(logrus.Fields{"state_from": from, "state_to": to}).Debug("exchange state transition")
}

// Error logs err at error level, annotated with msg.
func (l *Logger) Error(err error, msg string) {
	l.entry.WithError(err).Error(msg)
}

// Info logs msg at info level.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Wrap annotates err with msg, preserving the original error for
// errors.Is/As unwrapping.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Aggregate combines cleanup failures collected during connection
// teardown (body cancellation, close-dance errors, listener close) into a
// single error, or nil if errs is empty/all-nil.
func Aggregate(errs ...error) error {
	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
