// Package backend is the typed binding to the shop's REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/observability"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

const maxResponseBytes = 32 << 20

// Client calls the REST backend. The http.Client is expected to carry the
// session middlewares; Client itself never touches the token.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger

	Users      *Users
	Products   *Products
	Categories *Categories
	Orders     *Orders
	Reviews    *Reviews
}

// New builds a client rooted at baseURL.
func New(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  observability.OrNop(logger).Named("backend"),
	}
	c.Users = &Users{c: c}
	c.Products = &Products{c: c}
	c.Categories = &Categories{c: c}
	c.Orders = &Orders{c: c}
	c.Reviews = &Reviews{c: c}
	return c
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return req, apperrors.NewInternalError(err)
	}
	req.body = bytes.NewReader(body)
	req.contentType = "application/json"
	return req, nil
}

// do sends r and decodes a 2xx JSON body into out when out is non-nil.
// Non-2xx responses become *util.DomainError carrying the status and the
// backend's message.
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewBackendUnreachable(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.NewBackendUnreachable(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend error response",
			zap.String("method", r.method), zap.String("path", r.path), zap.Int("status", resp.StatusCode))
		return apperrors.FromStatus(resp.StatusCode, apperrors.MessageFromPayload(payload))
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewDomainError(apperrors.CodeBackendError,
			fmt.Sprintf("decode %s %s response", r.method, r.path), resp.StatusCode, nil)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path}, nil)
}
