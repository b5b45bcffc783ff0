// Package models provides the core data structures for handling webhook requests and responses.
package models

import (
	"net/url"
	"strings"
)

// Request represents an incoming client request, independent of the transport it arrived on.
// Header keys are lower-cased to match AWS Lambda proxy requests.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    []byte
	Headers map[string]string
}

// Header returns the value of the named header, matched case-insensitively.
func (r Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}
