package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/core/reorder"
)

// Client talks to the authenticated /api/v1 surface using the auth_token cookie.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status back onto the domain error kinds.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest:
		return domain.ErrInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return domain.ErrTransactionFailure
}

func (c *Client) MoveLink(ctx context.Context, linkID int64, index int) error {
	body := map[string]int{"index": index}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/links/%d/move", linkID), body, nil)
}

func (c *Client) ListLinks(ctx context.Context) ([]domain.Link, error) {
	var resp struct {
		Data []domain.Link `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/links", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Diagnose(ctx context.Context) (*domain.DiagnosticReport, error) {
	var report domain.DiagnosticReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/ordering/diagnose", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) Repair(ctx context.Context) (*domain.RepairResult, error) {
	var result domain.RepairResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/ordering/repair", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: c.token})

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ reorder.Mover = (*Client)(nil)
