// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel classifies severity so the caller knows whether to abort.
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind names one of the error categories called out by the harness.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidBet
	KindInsufficientBalance
	KindBuilderExhausted
	KindStrategyError
	KindAggregationEmpty
	KindInfeasible
)

var kindMap = map[Kind]string{
	KindNone:                "",
	KindInvalidBet:          "invalid_bet",
	KindInsufficientBalance: "insufficient_balance",
	KindBuilderExhausted:    "builder_exhausted",
	KindStrategyError:       "strategy_error",
	KindAggregationEmpty:    "aggregation_empty",
	KindInfeasible:          "infeasible",
}

func (k Kind) String() string { return kindMap[k] }

// E is the module's single error type. Message is the formatted primary
// text; Extra is caller-supplied context; Cause chains an underlying error;
// ErrLv says how severe it is; Kind says which of the harness's named error
// categories it belongs to (KindNone if it's not one of them).
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s", ErrLv(e.ErrLv))
	if e.Kind != KindNone {
		base += fmt.Sprintf(" kind=%s", e.Kind)
	}
	base += " " + e.Message
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap lets errors.Is / errors.As descend through Cause.
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return &E{Message: msg, ErrLv: Fatal} }
func NewWarn(msg string) *E  { return &E{Message: msg, ErrLv: Warn} }
func NewLog(msg string) *E   { return &E{Message: msg, ErrLv: Log} }

func Fatalf(format string, a ...any) *E { return NewFatal(fmt.Sprintf(format, a...)) }
func Warnf(format string, a ...any) *E  { return NewWarn(fmt.Sprintf(format, a...)) }
func Logf(format string, a ...any) *E   { return NewLog(fmt.Sprintf(format, a...)) }

// NewKind builds an *E tagged with one of the harness's named error kinds.
// Kind implies the severity: InvalidBet/InsufficientBalance/StrategyError
// terminate the set (Warn, recoverable by dropping the set); BuilderExhausted
// aborts the run (Fatal); AggregationEmpty/Infeasible are outcomes, not
// failures of the harness itself, and carry Warn severity.
func NewKind(kind Kind, msg string) *E {
	lv := Warn
	if kind == KindBuilderExhausted {
		lv = Fatal
	}
	return &E{Message: msg, ErrLv: lv, Kind: kind}
}

func NewInvalidBet(msg string) *E          { return NewKind(KindInvalidBet, msg) }
func NewInsufficientBalance(msg string) *E { return NewKind(KindInsufficientBalance, msg) }
func NewBuilderExhausted(msg string) *E    { return NewKind(KindBuilderExhausted, msg) }
func NewStrategyError(msg string) *E       { return NewKind(KindStrategyError, msg) }
func NewAggregationEmpty(msg string) *E    { return NewKind(KindAggregationEmpty, msg) }

// IsKind reports whether err is an *E of the given Kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsErr(err)
	return ok && e.Kind == kind
}

// NewWithExtra is New plus an extra context string that doesn't affect Message.
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap wraps cause under a new message.
//
// ErrLevel rule: if cause is already an *E, its ErrLv (and Kind) carry
// through unchanged; otherwise (stdlib/third-party error) the result is
// always Fatal, since we can't judge its recoverability.
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	var kind Kind
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra is Wrap plus an extra context string.
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
