package kis_test

import (
	"bytes"
	"io"
	"net/http"
)

// jsonResponse builds a response with the given status and raw JSON body.
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}
