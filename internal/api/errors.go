// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Gateway timeout status used by the upstream CDN when a completion takes
// too long to produce.
const statusGatewayTimeoutCDN = 524

// RequestError is any failed completion call: a non-success HTTP status,
// a transport failure (Status 0), or a success response missing the
// expected reply shape (Status of the original response).
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// IsTimeout reports whether the failure is gateway-timeout class
// (HTTP 524). These are suppressed entirely by the turn orchestrator:
// no message recorded, no notice shown. Keeping the match behind a named
// function makes that product decision visible and testable.
func IsTimeout(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.Status == statusGatewayTimeoutCDN ||
		reqErr.Status == http.StatusGatewayTimeout
}

// IsBlocked reports whether the failure is content-policy class. The
// upstream has no structured code for this, so the match is on the error
// message the way the service phrases it.
func IsBlocked(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	msg := strings.ToLower(reqErr.Message)
	return strings.Contains(msg, "content policy") || strings.Contains(msg, "blocked")
}

// statusMessage is the fallback when an error body can't be parsed.
func statusMessage(status int) string {
	return fmt.Sprintf("HTTP %d", status)
}
