package core

// errors.go defines the tagged error type every sync failure is reported
// through. Classification is explicit in the Kind field rather than via
// type assertions on wrapped errors, so callers (HTTP handlers, the
// notifier) can branch without knowing the failure's origin package.

import (
	"fmt"
	"strings"

	"github.com/mkallberg/pagesync/internal/notion"
)

// ErrorKind classifies a sync failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindConversion
	KindSchema
	KindRetryableRemote
	KindFatalRemote
	KindConfig
	KindStore
)

var errorKindNames = map[ErrorKind]string{
	KindUnknown:         "unknown",
	KindValidation:      "validation",
	KindConversion:      "conversion",
	KindSchema:          "schema",
	KindRetryableRemote: "retryable_remote",
	KindFatalRemote:     "fatal_remote",
	KindConfig:          "config",
	KindStore:           "store",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// SyncError is the single failure type a sync run surfaces. Details
// carries per-field messages for validation and schema failures.
type SyncError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *SyncError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// remoteKind classifies a remote call failure after the retry policy has
// given up: exhausted retryable errors and fatal API errors land in
// different kinds so operators can tell outage from misconfiguration.
func remoteKind(err error) ErrorKind {
	if notion.IsRetryable(err) {
		return KindRetryableRemote
	}
	return KindFatalRemote
}
