package kis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// maxBody caps how much of a response body is read.
	maxBody = 4 << 20
	// maxErrBody caps how much of an error body is kept in StatusError.
	maxErrBody = 2 << 10
)

// get performs an authorized quotation GET and returns the raw body of a 2xx response.
func (c *Client) get(ctx context.Context, token, trID, path string, query url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrMissingSecrets
	}

	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.appSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	return readBody(res)
}

func readBody(res *http.Response) ([]byte, error) {
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrBody))
		return nil, &StatusError{Code: res.StatusCode, Body: string(b)}
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return b, nil
}
