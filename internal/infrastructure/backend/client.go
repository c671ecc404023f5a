// Package backend is the only way the gateway talks to the storefront API.
// Every call carries the bound session's credentials in the x-access-token and x-user-id
// headers (and cookies). Failures are passed through untranslated apart from wrapping non-2xx
// responses in *Error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-storefront-gateway/internal/domain"
)

// CredentialSource supplies the credential to attach to outbound calls.
type CredentialSource interface {
	Credentials() domain.Credential
}

// Paths lets deployments point the auth calls at different backend routes.
type Paths struct {
	Verify  string
	Session string
	SignUp  string
	SignIn  string
	Me      string
}

// DefaultPaths are used for any Paths field left empty.
var DefaultPaths = Paths{
	Verify:  "/auth/verify",
	Session: "/auth/session",
	SignUp:  "/auth/signup",
	SignIn:  "/auth/signin",
	Me:      "/auth/me",
}

// Client performs requests against a single backend origin.
type Client struct {
	baseURL string
	http    *http.Client
	paths   Paths
	source  CredentialSource
}

// New returns a Client with no session bound. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, paths Paths) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		paths:   paths.withDefaults(),
	}
}

// WithSession returns a copy of c whose calls read credentials from src.
func (c *Client) WithSession(src CredentialSource) *Client {
	cp := *c
	cp.source = src
	return &cp
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	bearer string
}

// WithBearer authenticates one call with token instead of the bound session. The bound
// session is neither read nor modified by that call.
func WithBearer(token string) CallOption {
	return func(o *callOptions) { o.bearer = token }
}

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend responded %d", e.Status)
}

// Unwrap maps 401/403 to domain.ErrUnauthorized, 404 to domain.ErrNotFound, 400/422 to
// domain.ErrBadRequest and any other status to domain.ErrVerificationRejected.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrBadRequest
	}
	return domain.ErrVerificationRejected
}

// Do sends one request. in is JSON-encoded when non-nil; a 2xx body is decoded into out when
// out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any, opts ...CallOption) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authenticate(req, o)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authenticate attaches credentials read at send time.
func (c *Client) authenticate(req *http.Request, o callOptions) {
	if o.bearer != "" {
		req.Header.Set(domain.HeaderAccessToken, o.bearer)
		req.AddCookie(&http.Cookie{Name: domain.CookieAccessToken, Value: o.bearer})
		return
	}
	if c.source == nil {
		return
	}
	creds := c.source.Credentials()
	if creds.Token != "" {
		req.Header.Set(domain.HeaderAccessToken, creds.Token)
		req.AddCookie(&http.Cookie{Name: domain.CookieAccessToken, Value: creds.Token})
	}
	if creds.SubjectID != "" {
		req.Header.Set(domain.HeaderUserID, creds.SubjectID)
		req.AddCookie(&http.Cookie{Name: domain.CookieUserID, Value: creds.SubjectID})
	}
}

func errorMessage(r io.Reader) string {
	var body struct {
		Message          string `json:"message"`
		Error            string `json:"error"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(b) == 0 {
		return ""
	}
	if json.Unmarshal(b, &body) != nil {
		return ""
	}
	for _, m := range []string{body.Message, body.ErrorDescription, body.Msg, body.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

func (p Paths) withDefaults() Paths {
	if p.Verify == "" {
		p.Verify = DefaultPaths.Verify
	}
	if p.Session == "" {
		p.Session = DefaultPaths.Session
	}
	if p.SignUp == "" {
		p.SignUp = DefaultPaths.SignUp
	}
	if p.SignIn == "" {
		p.SignIn = DefaultPaths.SignIn
	}
	if p.Me == "" {
		p.Me = DefaultPaths.Me
	}
	return p
}
