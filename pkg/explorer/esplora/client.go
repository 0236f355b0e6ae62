package esplora

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPError is returned when esplora answers with a non-200 status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("esplora responded with status %d: %s", e.StatusCode, e.Message)
}

// isSuccessful tells the circuit breaker which errors must not be counted as
// failures: requests rejected by esplora (eg. an invalid tx broadcast) or
// canceled by the caller.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func (e *esplora) doRequest(
	ctx context.Context,
	method, path, body string,
	headers map[string]string,
) (string, error) {
	e.limiter.Take()

	resp, err := e.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, method, e.apiURL+path, strings.NewReader(body),
		)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		res, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		buf, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			return nil, &HTTPError{
				StatusCode: res.StatusCode,
				Message:    strings.TrimSpace(string(buf)),
			}
		}
		return string(buf), nil
	})
	if err != nil {
		return "", err
	}
	return resp.(string), nil
}
