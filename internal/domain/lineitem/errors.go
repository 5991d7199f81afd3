// internal/domain/lineitem/errors.go
package lineitem

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for precondition failures
var (
	// ErrNotAuthenticated is returned when a remote operation is attempted
	// without an owner
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrItemNotFound is returned when an update or remove targets a variant
	// ref that is not in the local cache
	ErrItemNotFound = errors.New("item not found in cache")
)

// InvalidPriceError reports a monetary value that failed validation
type InvalidPriceError struct {
	Raw    string
	Reason string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %q: %s", e.Raw, e.Reason)
}

// IsInvalidPrice reports whether err is an InvalidPriceError
func IsInvalidPrice(err error) bool {
	var ipe *InvalidPriceError
	return errors.As(err, &ipe)
}

// RemoteError carries the status class of a failed remote store call.
// The server-provided message is surfaced verbatim when present.
type RemoteError struct {
	StatusCode int
	StatusText string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote store: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("remote store: %s (status %d)", e.StatusText, e.StatusCode)
}

// NotFound reports whether the failure is 404-class, which drives the
// reconcile fallback instead of propagating
func (e *RemoteError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRemoteNotFound reports whether err is a 404-class remote failure
func IsRemoteNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.NotFound()
}

// DecodeError reports a remote response that did not match the expected
// record shape. Missing fields fail loudly instead of silently defaulting.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode remote record: field %q %s", e.Field, e.Reason)
}

// UnscopedDataError signals a remote response with no owner scoping at all.
// The affected data is never rendered; callers get an empty result instead.
type UnscopedDataError struct {
	Records int
}

func (e *UnscopedDataError) Error() string {
	return fmt.Sprintf("remote response carries no owner scoping (%d records withheld)", e.Records)
}

// IsUnscopedData reports whether err is an UnscopedDataError
func IsUnscopedData(err error) bool {
	var ue *UnscopedDataError
	return errors.As(err, &ue)
}

// StorageError wraps a local persistence failure
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
