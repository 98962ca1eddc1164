// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// ErrNotFound is returned by lookup helpers when no directory object matches.
var ErrNotFound = errors.New("graph: object not found")

// Error is a decoded Graph OData error response. It wraps the underlying
// *azcore.ResponseError so the status code helpers below keep working.
type Error struct {
	Code    string
	Message string

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// odataErrorBody is the wire shape of a Graph error response.
type odataErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newResponseError builds the error for a non-success Graph response. When the
// body carries an OData error payload it is decoded into a *graph.Error,
// otherwise the plain *azcore.ResponseError is returned.
func newResponseError(resp *http.Response) error {
	respErr := runtime.NewResponseError(resp)
	body, err := runtime.Payload(resp)
	if err != nil {
		return respErr //nolint:wrapcheck
	}
	var decoded odataErrorBody
	if json.Unmarshal(body, &decoded) != nil || decoded.Error.Code == "" {
		return respErr //nolint:wrapcheck
	}
	return &Error{
		Code:    decoded.Error.Code,
		Message: decoded.Error.Message,
		cause:   respErr,
	}
}

// IsNotFound reports whether the error is a Graph 404 response or ErrNotFound.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return hasStatusCode(err, http.StatusNotFound)
}

// IsConflict reports whether the error is a Graph 409 response.
// Graph returns 409 when creating an object that already exists.
func IsConflict(err error) bool {
	return hasStatusCode(err, http.StatusConflict)
}

// IsRetryable reports whether the error is worth retrying: throttling or a
// server side failure. Propagation delays surface as 404s on freshly created
// objects, the caller decides whether those are retryable in context.
func IsRetryable(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	switch respErr.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func hasStatusCode(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}
