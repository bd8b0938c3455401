package gramps

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

	"github.com/EdgarM73/gramps-ha/internal/config"
)

// ErrNotFound reports that the requested event does not exist upstream.
// Callers treat it as missing data, not as a transport failure.
var ErrNotFound = errors.New(config.ErrEventNotFound)

// Client talks to a Gramps Web instance. It authenticates lazily on the
// first request when credentials are configured and reuses the bearer token
// for the lifetime of the client.
type Client struct {
	BaseURL  string
	Username string
	Password string

	HTTP  *http.Client
	token string
}

// NewClient validates the base URL and constructs a client with the standard
// timeouts. Only http and https schemes are accepted.
func NewClient(rawURL, username, password string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, config.HandleSeparator))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	return &Client{
		BaseURL:  strings.TrimRight(rawURL, config.HandleSeparator),
		Username: username,
		Password: password,
		HTTP: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}, nil
}

// ListPeople retrieves all person records.
func (c *Client) ListPeople(ctx context.Context) ([]PersonRecord, error) {
	var people []PersonRecord
	if err := c.getJSON(ctx, config.APIPeoplePath, &people); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPeopleFetch, err)
	}
	return people, nil
}

// FetchEvent retrieves a single event by handle. A 404 maps to ErrNotFound.
func (c *Client) FetchEvent(ctx context.Context, handle string) (EventRecord, error) {
	var event EventRecord
	path := config.APIEventsPath + url.PathEscape(handle)
	if err := c.getJSON(ctx, path, &event); err != nil {
		if errors.Is(err, ErrNotFound) {
			return EventRecord{}, fmt.Errorf("%s %q: %w", config.ErrEventFetch, handle, ErrNotFound)
		}
		return EventRecord{}, fmt.Errorf("%s %q: %w", config.ErrEventFetch, handle, err)
	}
	return event, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c.token == "" && c.Username != "" {
		if err := c.authenticate(ctx); err != nil {
			return err
		}
	}

	target := c.BaseURL + path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompClient),
		slog.String(config.LogKeyURL, sanitizeURL(target)),
	)
	log.Debug("GET request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if c.token != "" {
		req.Header.Set(config.HeaderAuth, config.BearerPrefix+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("network error during fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn(config.ErrUnexpectedCode,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return fmt.Errorf("%s: %d %s", config.ErrUnexpectedCode, resp.StatusCode, resp.Status)
	}

	body := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDecodeBody, err)
	}
	return nil
}

// authenticate exchanges the configured credentials for a bearer token.
func (c *Client) authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": c.Username,
		"password": c.Password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAuthFailed, err)
	}

	authCtx, cancel := context.WithTimeout(ctx, config.AuthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(authCtx, http.MethodPost,
		c.BaseURL+config.APITokenPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAuthFailed, err)
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAuthFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %d %s", config.ErrAuthFailed, resp.StatusCode, resp.Status)
	}

	var tokens map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAuthFailed, err)
	}

	token := tokens[config.TokenFieldName]
	if token == "" {
		return errors.New(config.ErrTokenMissing)
	}
	c.token = token

	slog.Debug(config.MsgAuthOK,
		config.LogKeyComponent, config.CompClient,
		config.LogKeyUser, c.Username,
	)
	return nil
}

// sanitizeURL strips query parameters which might contain tokens before the
// URL reaches a log line.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host + u.Path
}
