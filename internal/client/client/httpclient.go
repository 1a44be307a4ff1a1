package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
)

const contentTypeJSON = "application/json"

// HTTPClient talks to the backend over HTTP/JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its transport is
// still wrapped so the bearer token and request id are attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// NewHTTPClient builds a backend client rooted at baseURL. tokens may be nil.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.httpClient
	hc.Transport = &authTransport{base: base, tokens: tokens}
	c.httpClient = &hc

	return c, nil
}

// authTransport attaches the bearer token and a request id to every call.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	if t.tokens != nil {
		if tok := t.tokens.Token(); tok != "" {
			r.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
		}
	}
	return t.base.RoundTrip(r)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapError(err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to parse response: %w", common.ErrTransport, err)
		}
	}
	return nil
}

func (c *HTTPClient) VerifyToken(ctx context.Context, idToken string) (string, error) {
	var resp verifyTokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-token", verifyTokenRequest{IDToken: idToken}, &resp); err != nil {
		return "", err
	}
	if resp.UID == "" {
		return "", fmt.Errorf("%w: verify-token returned no uid", common.ErrTransport)
	}
	return resp.UID, nil
}

func (c *HTTPClient) CheckUserInfo(ctx context.Context, uid string) (models.Profile, error) {
	var resp userInfoResponse
	if err := c.do(ctx, http.MethodPost, "/auth/check-user-info", uidRequest{UID: uid}, &resp); err != nil {
		return models.Profile{}, err
	}
	return models.Profile{UID: uid, Name: resp.Name}, nil
}

func (c *HTTPClient) UpdateName(ctx context.Context, uid, name string) error {
	return c.do(ctx, http.MethodPost, "/auth/update-name", updateNameRequest{UID: uid, Name: name}, nil)
}

// GetSessions returns the user's sessions in server order.
func (c *HTTPClient) GetSessions(ctx context.Context, uid string) ([]models.Session, error) {
	var resp sessionsResponse
	path := "/session/get-sessions?" + url.Values{"uid": {uid}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Session, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		out = append(out, models.Session{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: time.Time(s.CreatedAt),
		})
	}
	return out, nil
}

func (c *HTTPClient) StartSession(ctx context.Context, uid, name string) (string, error) {
	var resp startSessionResponse
	if err := c.do(ctx, http.MethodPost, "/session/start-session", startSessionRequest{UID: uid, Name: name}, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("%w: start-session returned no session_id", common.ErrTransport)
	}
	return resp.SessionID, nil
}

func (c *HTTPClient) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/session/delete-session/"+url.PathEscape(sessionID), nil, nil)
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	var resp sessionDetailResponse
	if err := c.do(ctx, http.MethodGet, "/session/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// UploadImage attaches an already hosted image to the session. The backend
// classifies it synchronously or in the background.
func (c *HTTPClient) UploadImage(ctx context.Context, sessionID, uid string, ref models.ImageRef) error {
	req := uploadImageRequest{
		UID:       uid,
		ImageURLs: []imageURL{{URL: ref.DisplayURL, DeleteURL: ref.DeleteURL}},
	}
	return c.do(ctx, http.MethodPost, "/session/"+url.PathEscape(sessionID)+"/upload-image", req, nil)
}

var _ Client = (*HTTPClient)(nil)
