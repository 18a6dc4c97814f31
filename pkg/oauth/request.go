package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIRequest is an outgoing provider API request before it is sent.
// A RequestFunc may change any field; the request is consumed by the driver afterwards.
type APIRequest struct {
	Header http.Header
	Query  url.Values
	Method string
	URL    string
}

// RequestFunc customizes a provider API request before dispatch.
// It is called exactly once per request. Drivers that fetch the profile and
// the email list in parallel call it from two goroutines.
type RequestFunc func(r *APIRequest)

// newAuthenticatedRequest builds a JSON GET request carrying the bearer token.
func newAuthenticatedRequest(endpoint, token string) *APIRequest {
	r := &APIRequest{
		Method: http.MethodGet,
		URL:    endpoint,
		Header: make(http.Header),
		Query:  make(url.Values),
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Authorization", "Bearer "+token)
	r.Query.Set("format", "json")
	return r
}

// build turns the request into an *http.Request, merging Query into any query
// already present in URL.
func (r *APIRequest) build(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	for k, vs := range r.Query {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	return req, nil
}

// fetchJSON applies fn, sends the request and decodes a 2xx JSON body into dst.
// It returns the raw body so drivers can keep the original payload.
func fetchJSON(ctx context.Context, client *http.Client, r *APIRequest, fn RequestFunc, dst any) ([]byte, error) {
	if fn != nil {
		fn(r)
	}

	req, err := r.build(ctx)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from %s", req.URL.Path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("%s request failed: status=%d body=%s",
			req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode %s: %w", req.URL.Path, err))
	}

	return body, nil
}
