package gazapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the Material Record Service. Key and
// Message hold the first error pair of the JSON body, in document order.
type APIError struct {
	Status  int
	Key     string
	Message string
}

func (e *APIError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("api status %d: %s : %s", e.Status, e.Key, e.Message)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Display renders the pair the way it is shown to the user.
func (e *APIError) Display() string {
	if e.Key == "" {
		return e.Message
	}
	if e.Key == "message" || e.Key == "error" || e.Key == "detail" {
		return e.Message
	}
	return e.Key + " : " + e.Message
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	key, msg, ok := firstErrorPair(body)
	if ok {
		apiErr.Key = key
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// firstErrorPair reads the first key of a JSON object without losing order.
// Django REST framework bodies look like {"field": ["msg", ...]} or
// {"message": "msg"}.
func firstErrorPair(body []byte) (string, string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return "", "", false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", "", false
	}
	if !dec.More() {
		return "", "", false
	}
	tok, err = dec.Token()
	if err != nil {
		return "", "", false
	}
	key, ok := tok.(string)
	if !ok {
		return "", "", false
	}
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", "", false
	}
	return key, firstMessage(raw), true
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return firstMessage(list[0])
	}
	return strings.TrimSpace(string(raw))
}
