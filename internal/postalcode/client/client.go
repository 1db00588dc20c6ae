// Package client provides the HTTP client for the postal code service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cep_lookup/internal/lookup"
	"cep_lookup/internal/postalcode/transport"
	"cep_lookup/platform/apperr"
	"cep_lookup/platform/logger"
)

const (
	searchPath = "/api/v1/postal-codes/search"
	savePath   = "/api/v1/postal-codes/save"
)

// Client calls the search and save endpoints. Any failure to obtain a
// well-formed 2xx answer is an apperr.KindUnavailable error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		log:        log,
	}
}

// Search implements lookup.Client.
func (c *Client) Search(ctx context.Context, q lookup.Query) (lookup.LookupResult, error) {
	var resp transport.SearchResponse
	req := transport.SearchRequest{City: q.City, RegionCode: q.RegionCode}
	if err := c.post(ctx, searchPath, req, &resp); err != nil {
		return lookup.LookupResult{}, apperr.Unavailable("search call failed", err).WithOp("client.Search")
	}
	return lookup.LookupResult{Found: resp.Found, Code: resp.Code}, nil
}

// Save implements lookup.Client.
func (c *Client) Save(ctx context.Context, r lookup.SaveRequest) (lookup.SaveResult, error) {
	var resp transport.SaveResponse
	req := transport.SaveRequest{City: r.City, RegionCode: r.RegionCode, Code: r.CandidateCode}
	if err := c.post(ctx, savePath, req, &resp); err != nil {
		return lookup.SaveResult{}, apperr.Unavailable("save call failed", err).WithOp("client.Save")
	}
	return lookup.SaveResult{Success: resp.Success, Code: resp.Code, Message: resp.Message}, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := c.log.WithContext(ctx)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("postal code request failed", "error", err, "url", reqURL)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("postal code upstream error", "status", resp.StatusCode, "url", reqURL)
		return fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("postal code decode failed", "error", err, "url", reqURL)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ lookup.Client = (*Client)(nil)
