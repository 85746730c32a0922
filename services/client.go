package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
)

// ClientConfig holds the remote API location.
type ClientConfig struct {
	BaseURL  string
	BasePath string
	// Timeout of zero leaves the transport default in place.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Session is the signed-in staff member on whose behalf requests are made. The zero value is an
// anonymous session: requests go out without credentials and the server decides.
type Session struct {
	Token  string
	UserID string
	Email  string
	Role   string
}

// NewSession builds a Session from a bearer token, reading the staff identity from its claims.
// A token whose payload cannot be decoded still authenticates requests.
func NewSession(token string) Session {
	token = strings.TrimSpace(token)
	s := Session{Token: token}
	if token == "" {
		return s
	}
	claims, err := utils.ParseSessionClaims(token)
	if err != nil {
		utils.ErrorLogger.Debugf("session token has no readable claims: %v", err)
		return s
	}
	s.UserID = claims.UserID
	s.Email = claims.Email
	s.Role = claims.Role
	return s
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Client performs requests against the restaurant API on behalf of one Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if p := strings.Trim(cfg.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return &Client{baseURL: base, httpClient: hc}
}

// WithSession returns a copy of the client bound to s. The receiver is left unchanged.
func (c *Client) WithSession(s Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

func (c *Client) Session() Session {
	return c.session
}

// do sends one request and returns the status and body. Only transport failures are errors.
func (c *Client) do(ctx context.Context, op apierrors.Op, method, path string, query url.Values, payload interface{}) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, apierrors.ES(op, apierrors.KClientValidation, "cannot encode request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, apierrors.ES(op, apierrors.KClientValidation, "cannot build request: %v", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"op":         op,
			"method":     method,
			"path":       path,
			"request_id": requestID,
		}).Warnf("api request failed: %v", err)
		return 0, nil, apierrors.Transport(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apierrors.Transport(op, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"op":         op,
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": requestID,
		"latency":    time.Since(start),
	}).Debug("api request")

	return resp.StatusCode, data, nil
}

// call performs a request and interprets its response. A non-success status always yields
// exactly one KRemote error whose message comes from the body's message or error field, the raw
// body text, or "request failed with status N", in that order. A successful body that is not
// JSON is returned as {"message": text}; an empty one as nil.
func (c *Client) call(ctx context.Context, op apierrors.Op, method, path string, query url.Values, payload interface{}) (interface{}, error) {
	status, body, err := c.do(ctx, op, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, apierrors.Remote(op, status, remoteMessage(status, body))
	}

	if v, ok := normalizer.Decode(body); ok {
		return v, nil
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return map[string]interface{}{"message": text}, nil
	}
	return nil, nil
}

func remoteMessage(status int, body []byte) string {
	if msg, ok := normalizer.ErrorMessage(body); ok {
		return msg
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
