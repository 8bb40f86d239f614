package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/agentline/types"
)

// DefaultHTTPTimeout bounds HTTP helper calls whose context carries no
// deadline of its own.
const DefaultHTTPTimeout = 5 * time.Second

var httpClient = &http.Client{}

// HTTPGet fetches url and returns the response body.
func HTTPGet(ctx context.Context, url string) (string, error) {
	return doRequest(ctx, http.MethodGet, url, "", nil)
}

// HTTPPost sends body to url as plain text and returns the response
// body.
func HTTPPost(ctx context.Context, url, body string) (string, error) {
	return doRequest(ctx, http.MethodPost, url, "text/plain; charset=utf-8", strings.NewReader(body))
}

// HTTPPostJSON marshals payload and posts it to url as JSON, returning
// the response body.
func HTTPPostJSON(ctx context.Context, url string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", types.Invalidf("encode json payload: %v", err).
			WithCode(types.ErrToolFailed).WithCause(err)
	}
	return doRequest(ctx, http.MethodPost, url, "application/json", bytes.NewReader(data))
}

func doRequest(ctx context.Context, method, url, contentType string, body io.Reader) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultHTTPTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return "", types.Invalidf("build http request: %v", err).
			WithCode(types.ErrToolFailed).WithCause(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", types.WrapTransient("http request failed", err).WithCode(types.ErrToolFailed)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.WrapTransient("read http response", err).WithCode(types.ErrToolFailed)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", types.Transientf("http status %d from %s", resp.StatusCode, url).
				WithCode(types.ErrToolFailed)
		}
		return "", types.Invalidf("http status %d from %s", resp.StatusCode, url).
			WithCode(types.ErrToolFailed)
	}
	return string(data), nil
}
