// Package client holds the HTTP clients for the three external
// collaborators: the order service, the payment service, and the loyalty
// service. Wire-shape variance is absorbed here; everything past this
// boundary sees one canonical type per concept.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// genericErrorMessage is shown when a collaborator fails without a
// structured error body.
const genericErrorMessage = "Có lỗi xảy ra, vui lòng thử lại sau"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ServiceError is a non-2xx response from a collaborator. Message carries
// the human-readable text extracted from a structured error body when one
// was present, else the generic fallback.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// newHTTPClient builds the shared client with the fixed request timeout.
// A timeout is treated like any other failure; there are no retries.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// decodeError turns a non-2xx response into a ServiceError, pulling the
// message out of `{"error": "..."}` or `{"message": "..."}` bodies.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := genericErrorMessage
	if err := json.Unmarshal(body, &wire); err == nil {
		switch {
		case wire.Error != "":
			msg = wire.Error
		case wire.Message != "":
			msg = wire.Message
		}
	}

	return &ServiceError{StatusCode: resp.StatusCode, Message: msg}
}

// doJSON performs one JSON request/response round trip. A nil out skips
// response decoding.
func doJSON(ctx context.Context, hc *http.Client, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// joinURL appends a path to a base URL without duplicating slashes.
func joinURL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return fmt.Sprintf("%s%s", base, path)
}
