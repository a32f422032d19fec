// AngelaMos | 2026
// client.go

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/metrics"
)

const (
	breakerName     = "identity"
	maxResponseBody = 1 << 20
)

// APIError is a non-2xx answer from the auth service. It unwraps to the
// core sentinel matching its status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return core.ErrNotFound
	case e.StatusCode == http.StatusUnauthorized,
		e.StatusCode == http.StatusForbidden:
		return core.ErrUnauthorized
	case e.StatusCode == http.StatusBadRequest,
		e.StatusCode == http.StatusUnprocessableEntity:
		return core.ErrInvalidInput
	case e.StatusCode == http.StatusConflict:
		return core.ErrConflict
	default:
		return core.ErrUpstream
	}
}

type rawResponse struct {
	status int
	body   []byte
}

// Client talks to the hosted auth service over its REST API. Calls are never
// retried; the breaker only fails fast while the service is down.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
	cb         *gobreaker.CircuitBreaker[*rawResponse]
}

func NewClient(cfg config.IdentityConfig) *Client {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		http:       &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	admin  bool
	bearer string
	body   any
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	key := c.anonKey
	if req.admin {
		key = c.serviceKey
	}
	bearer := req.bearer
	if bearer == "" {
		bearer = key
	}

	httpReq.Header.Set("apikey", key)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.cb.Execute(func() (*rawResponse, error) {
		r, doErr := c.http.Do(httpReq)
		if doErr != nil {
			return nil, doErr
		}
		defer r.Body.Close() //nolint:errcheck // read-only body

		body, readErr := io.ReadAll(io.LimitReader(r.Body, maxResponseBody))
		if readErr != nil {
			return nil, readErr
		}

		if r.StatusCode >= http.StatusInternalServerError {
			return nil, &APIError{StatusCode: r.StatusCode, Message: errorMessage(body, r.StatusCode)}
		}

		return &rawResponse{status: r.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) ||
			errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.BreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return fmt.Errorf("auth service unavailable: %w", core.ErrUpstream)
		}

		metrics.BreakerRequests.WithLabelValues(breakerName, "failure").Inc()

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("auth service request: %w: %w", core.ErrUpstream, err)
	}

	metrics.BreakerRequests.WithLabelValues(breakerName, "success").Inc()

	if resp.status < 200 || resp.status > 299 {
		return &APIError{StatusCode: resp.status, Message: errorMessage(resp.body, resp.status)}
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w: %w", core.ErrUpstream, err)
	}

	return nil
}

// errorMessage picks the first populated field of the auth service's error
// body. Different endpoints use different keys.
func errorMessage(body []byte, status int) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	//nolint:errcheck // fall through to the status text
	_ = json.Unmarshal(body, &e)

	for _, m := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if m != "" {
			return m
		}
	}
	return http.StatusText(status)
}

// Verify resolves an access token through the auth service.
func (c *Client) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	return c.GetUser(ctx, accessToken)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("get user: %w", core.ErrUnauthorized)
	}

	var p userPayload
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		bearer: accessToken,
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("get user: empty identity: %w", core.ErrUnauthorized)
	}

	return p.toIdentity(), nil
}

func (c *Client) grant(
	ctx context.Context,
	grantType string,
	body any,
) (*Session, error) {
	var p sessionPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {grantType}},
		body:   body,
	}, &p)
	if err != nil {
		return nil, err
	}
	if p.AccessToken == "" {
		return nil, fmt.Errorf("empty session: %w", core.ErrUpstream)
	}
	return p.toSession(), nil
}

func (c *Client) SignInWithPassword(
	ctx context.Context,
	email, password string,
) (*Session, error) {
	s, err := c.grant(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s, nil
}

func (c *Client) RefreshSession(
	ctx context.Context,
	refreshToken string,
) (*Session, error) {
	s, err := c.grant(ctx, "refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return s, nil
}

// ExchangeCode completes the PKCE flow started by AuthorizeURL.
func (c *Client) ExchangeCode(
	ctx context.Context,
	code, verifier string,
) (*Session, error) {
	s, err := c.grant(ctx, "pkce", map[string]string{
		"auth_code":     code,
		"code_verifier": verifier,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return s, nil
}

// SignUp registers a user. When the project requires email confirmation the
// service answers with the bare user and no session.
func (c *Client) SignUp(
	ctx context.Context,
	email, password string,
	meta Metadata,
) (*Identity, *Session, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body: map[string]any{
			"email":    email,
			"password": password,
			"data":     meta,
		},
	}, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("sign up: %w", err)
	}

	var sp sessionPayload
	if err := json.Unmarshal(raw, &sp); err == nil && sp.AccessToken != "" && sp.User != nil {
		s := sp.toSession()
		return s.User, s, nil
	}

	var up userPayload
	if err := json.Unmarshal(raw, &up); err != nil || up.ID == "" {
		return nil, nil, fmt.Errorf("sign up: unexpected response: %w", core.ErrUpstream)
	}

	return up.toIdentity(), nil, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		bearer: accessToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// AuthorizeURL builds the provider redirect for the PKCE flow.
func (c *Client) AuthorizeURL(provider, redirectTo, challenge string) string {
	q := url.Values{
		"provider":              {provider},
		"redirect_to":           {redirectTo},
		"code_challenge":        {challenge},
		"code_challenge_method": {"s256"},
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// CreateUser provisions an identity with the email already confirmed.
func (c *Client) CreateUser(
	ctx context.Context,
	email, password string,
	meta Metadata,
) (*Identity, error) {
	var p userPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/admin/users",
		admin:  true,
		body: map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
			"user_metadata": meta,
		},
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("create user: empty identity: %w", core.ErrUpstream)
	}

	return p.toIdentity(), nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/auth/v1/admin/users/" + url.PathEscape(id),
		admin:  true,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
