package handler

import "fmt"

// MissingVerifyTokenError is returned when a handler is built without a verify token.
type MissingVerifyTokenError struct{}

func (m *MissingVerifyTokenError) Error() string {
	return "no verify token configured"
}

// MalformedPayloadError wraps the JSON error of a notification body that could not be parsed.
type MalformedPayloadError struct {
	Err error
}

func (m *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", m.Err)
}

func (m *MalformedPayloadError) Unwrap() error {
	return m.Err
}

// UnsupportedContentTypeError is returned for notifications whose Content-Type is not JSON.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (m *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type: %s", m.ContentType)
}

// PayloadTooLargeError is returned for notification bodies above MaxBodyBytes.
type PayloadTooLargeError struct {
	Size int
}

func (m *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds the %d bytes limit", m.Size, MaxBodyBytes)
}
