package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ObjectPage is the object value carried by page subscription events.
const ObjectPage = "page"

// Notification is the envelope the messaging platform posts for subscribed events.
// Entry is kept as raw JSON: its content is never inspected.
type Notification struct {
	Object string          `json:"object,omitempty"`
	Entry  json.RawMessage `json:"entry,omitempty"`
}

// ParseNotification decodes a webhook body. An empty body yields an empty Notification.
func ParseNotification(body []byte) (Notification, error) {
	var n Notification
	if len(bytes.TrimSpace(body)) == 0 {
		return n, nil
	}
	err := json.Unmarshal(body, &n)
	return n, err
}

// UnmarshalJSON accepts any valid JSON document. Only a top-level object with a string
// "object" member populates Object, so arrays, scalars and non-string objects decode
// to a Notification that is not page-sourced instead of failing.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Object json.RawMessage `json:"object"`
		Entry  json.RawMessage `json:"entry"`
	}
	*n = Notification{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil
		}
		return err
	}
	if len(envelope.Object) > 0 {
		_ = json.Unmarshal(envelope.Object, &n.Object)
	}
	n.Entry = envelope.Entry
	return nil
}

// IsPage reports whether the notification originates from a page subscription.
func (n Notification) IsPage() bool {
	return n.Object == ObjectPage
}

// EntryCount returns the number of entries when entry is an array, and -1 otherwise.
func (n Notification) EntryCount() int {
	var entries []json.RawMessage
	if err := json.Unmarshal(n.Entry, &entries); err != nil {
		return -1
	}
	return len(entries)
}
