// Package identity implements the admin client for the external identity
// store. The store owns authentication records; this service only lists
// them, deletes orphans, and installs derived passwords.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
)

// ErrMissingServiceKey indicates that the client was configured without credentials.
var ErrMissingServiceKey = errors.New("identity: service key is required")

// ErrMissingBaseURL indicates that the client was configured without a store URL.
var ErrMissingBaseURL = errors.New("identity: base url is required")

const defaultPageSize = 1000

// Options configures the identity store admin client.
type Options struct {
	BaseURL        string
	ServiceKey     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	PageSize       int
}

// Client performs HTTP calls against the identity store admin API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *infra.Logger
	pageSize   int
}

type adminUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

type updateUserRequest struct {
	Password string `json:"password"`
}

type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if strings.TrimSpace(opts.ServiceKey) == "" {
		return nil, ErrMissingServiceKey
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		serviceKey: opts.ServiceKey,
		httpClient: httpClient,
		logger:     opts.Logger,
		pageSize:   pageSize,
	}, nil
}

// ListUsers returns every authentication record the store holds,
// aggregated across pages. The store offers no exact-email lookup, so
// callers filter the full listing themselves.
func (c *Client) ListUsers(ctx context.Context) ([]domain.AuthRecord, error) {
	var records []domain.AuthRecord

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/auth/v1/admin/users?page=%d&per_page=%d", c.baseURL, page, c.pageSize)
		body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var resp listUsersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("identity: decode user listing: %w", err)
		}

		for _, u := range resp.Users {
			records = append(records, domain.AuthRecord{
				ID:        u.ID,
				Email:     u.Email,
				CreatedAt: u.CreatedAt,
			})
		}

		if len(resp.Users) < c.pageSize {
			return records, nil
		}
	}
}

// DeleteUser removes one authentication record by id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("identity: user id is required: %w", domain.ErrInvalidArgument)
	}
	endpoint := c.baseURL + "/auth/v1/admin/users/" + url.PathEscape(id)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// UpdatePassword installs a new password on an authentication record.
// The password value is a credential and is never logged.
func (c *Client) UpdatePassword(ctx context.Context, id, password string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("identity: user id is required: %w", domain.ErrInvalidArgument)
	}
	payload, err := json.Marshal(updateUserRequest{Password: password})
	if err != nil {
		return fmt.Errorf("identity: encode password update: %w", err)
	}
	endpoint := c.baseURL + "/auth/v1/admin/users/" + url.PathEscape(id)
	_, err = c.do(ctx, http.MethodPut, endpoint, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: %s %s: %w: %v", method, req.URL.Path, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("identity: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("method", method).
				Str("path", req.URL.Path).
				Msg("identity store request failed")
		}
		return nil, fmt.Errorf("identity: %s %s: %w: %s", method, req.URL.Path, domain.ErrUpstream, storeMessage(resp.StatusCode, body))
	}

	return body, nil
}

// storeMessage extracts a human-readable message without leaking the raw
// store response to callers.
func storeMessage(status int, body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, msg := range []string{envelope.Msg, envelope.Message, envelope.ErrorDescription} {
			if msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("status %d", status)
}
