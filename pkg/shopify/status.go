package shopify

import "net/http"

// statusText describes the status codes the Admin API documents. It is used
// for diagnostics only.
var statusText = map[int]string{
	http.StatusOK:                  "OK",
	http.StatusCreated:             "Created",
	http.StatusAccepted:            "Accepted",
	http.StatusNoContent:           "No Content",
	http.StatusSeeOther:            "See Other",
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized: missing or invalid credentials",
	http.StatusPaymentRequired:     "Payment Required: the shop is frozen",
	http.StatusForbidden:           "Forbidden: missing access scope",
	http.StatusNotFound:            "Not Found",
	http.StatusNotAcceptable:       "Not Acceptable",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusLocked:              "Locked: the shop is unavailable",
	http.StatusTooManyRequests:     "Too Many Requests: call limit exceeded",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusNotImplemented:      "Not Implemented",
	http.StatusBadGateway:          "Bad Gateway",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusGatewayTimeout:      "Gateway Timeout",
}

// StatusText returns a description for code, falling back to the net/http
// text and then to "Unknown Status".
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown Status"
}
