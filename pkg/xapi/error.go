package xapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind is a closed taxonomy over the upstream failures the rest
// of the application cares about. Anything that is not an APIError is
// a network or programming error and stays a plain error.
type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindPermissionDenied
	KindRateLimited
)

// APIError is a structured error returned by the X API, constructed
// once at the HTTP boundary.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("x api error %d: %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("x api error %d: %s", e.StatusCode, e.Title)
}

func (e *APIError) Kind() ErrorKind {
	switch e.StatusCode {
	case 403:
		return KindPermissionDenied
	case 429:
		return KindRateLimited
	default:
		return KindUpstream
	}
}

// v2 problem shape: {"title": "...", "detail": "...", "status": 403}
type v2ErrorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// v1.1 shape: {"errors": [{"code": 32, "message": "..."}]}
type v1ErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ParseAPIError builds an APIError from a non-2xx response body,
// accepting both the v2 problem shape and the legacy v1.1 error list.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var v2 v2ErrorBody
	if err := json.Unmarshal(body, &v2); err == nil && (v2.Title != "" || v2.Detail != "") {
		apiErr.Title = v2.Title
		apiErr.Detail = v2.Detail
		if v2.Status != 0 {
			apiErr.StatusCode = v2.Status
		}
		return apiErr
	}

	var v1 v1ErrorBody
	if err := json.Unmarshal(body, &v1); err == nil && len(v1.Errors) > 0 {
		messages := make([]string, 0, len(v1.Errors))
		for _, e := range v1.Errors {
			messages = append(messages, e.Message)
		}
		apiErr.Detail = strings.Join(messages, "; ")
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(body))
	return apiErr
}
