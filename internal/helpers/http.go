package helpers

import (
	"net/http"

	"github.com/isometry/messaging-webhook-app/internal/models"
)

// RespondHTTP writes the response verbatim. A missing status code is treated as 200 and an
// empty body on a non-200 status is replaced with the status text.
func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	body := ResponseBody(response)

	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	if rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	rw.Header().Set("X-Content-Type-Options", "nosniff")
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(body))
}

// ResponseBody returns the body to send for the response.
func ResponseBody(response models.Response) string {
	if response.Body == "" && response.StatusCode != 0 && response.StatusCode != http.StatusOK {
		return http.StatusText(response.StatusCode)
	}
	return response.Body
}
