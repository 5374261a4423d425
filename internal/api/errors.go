package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenericErrorMessage is shown when the API gives us nothing usable.
const GenericErrorMessage = "Ha ocurrido un error. Inténtalo de nuevo."

// Error is a non-2xx response from the backend. The Detail and Fields are
// surfaced to the user verbatim when the API provides them.
type Error struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Message returns the user-facing text for this error.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		var parts []string
		for field, msgs := range e.Fields {
			parts = append(parts, field+": "+strings.Join(msgs, " "))
		}
		return strings.Join(parts, "; ")
	}
	return GenericErrorMessage
}

// parseAPIError extracts a DRF-style error payload. The backend answers
// either {"detail": "..."}, {"error": "..."} or a field->messages map.
func parseAPIError(status int, body []byte) error {
	apiErr := &Error{StatusCode: status}
	if len(body) == 0 {
		return apiErr
	}

	var withDetail struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
		Msg    string `json:"message"`
	}
	if err := json.Unmarshal(body, &withDetail); err == nil {
		switch {
		case withDetail.Detail != "":
			apiErr.Detail = withDetail.Detail
			return apiErr
		case withDetail.Err != "":
			apiErr.Detail = withDetail.Err
			return apiErr
		case withDetail.Msg != "":
			apiErr.Detail = withDetail.Msg
			return apiErr
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		apiErr.Fields = make(map[string][]string, len(fields))
		for field, raw := range fields {
			var msgs []string
			if err := json.Unmarshal(raw, &msgs); err == nil {
				apiErr.Fields[field] = msgs
				continue
			}
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil {
				apiErr.Fields[field] = []string{msg}
			}
		}
	}
	return apiErr
}
