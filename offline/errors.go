/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package offline

import (
	"fmt"

	"github.com/pkg/errors"
)

// Store error codes.
const (
	CodeOpenFailed   = "OPEN_FAILED"
	CodeVersionError = "VERSION_ERROR"
	CodeWriteFailed  = "WRITE_FAILED"
	CodeReadFailed   = "READ_FAILED"
	CodeEncodeFailed = "ENCODE_FAILED"
)

// ErrStoreVersion is returned by Open when the queue file was written by a newer
// schema than this build understands.
var ErrStoreVersion = errors.New("offline queue schema is newer than supported")

// StoreError is returned by every Store operation.
type StoreError struct {
	Op   string
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("offline queue %s failed (%s): %v", e.Op, e.Code, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Cause() error { return e.Err }

func storeError(op, code string, err error, msg string) error {
	return &StoreError{Op: op, Code: code, Err: errors.Wrap(err, msg)}
}

// RemoteError is an application-level rejection: the server answered with a body
// carrying a "message" field.
type RemoteError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("pizza api rejected the request (status %d): %s", e.StatusCode, e.Message)
}

// TransportError means no response was received. Submissions failing this way are
// worth queueing.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pizza api unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err, or anything it wraps, is a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRemoteError reports whether err, or anything it wraps, is a *RemoteError.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
