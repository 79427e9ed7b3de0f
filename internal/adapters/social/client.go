// Package social talks to the microblogging service's v1.1 style REST API.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spybot/internal/core/domain"
	"spybot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Factory hands out clients that share one HTTP transport.
type Factory struct {
	apiURL    string
	userAgent string
	http      *http.Client
}

func NewFactory(apiURL, userAgent string, timeout time.Duration) *Factory {
	return &Factory{
		apiURL:    strings.TrimRight(apiURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Client returns a client acting as creds, or an anonymous one for empty credentials.
func (f *Factory) Client(creds domain.Credentials) port.SocialClient {
	return &Client{factory: f, creds: creds}
}

type Client struct {
	factory *Factory
	creds   domain.Credentials
}

type apiUser struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
	Location   string `json:"location"`
}

type apiStatus struct {
	ID   int64   `json:"id"`
	Text string  `json:"text"`
	User apiUser `json:"user"`
}

func (s apiStatus) toDomain() domain.Status {
	return domain.Status{ID: s.ID, Text: s.Text, ScreenName: s.User.ScreenName}
}

type searchResponse struct {
	Statuses []apiStatus `json:"statuses"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("social API error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) VerifyCredentials(ctx context.Context) error {
	if c.creds.Anonymous() {
		return domain.ErrMissingCredentials
	}

	var u apiUser
	return c.do(ctx, http.MethodGet, "account/verify_credentials.json", nil, &u)
}

func (c *Client) UserProfile(ctx context.Context, screenName string) (domain.Profile, error) {
	var u apiUser
	err := c.do(ctx, http.MethodGet, "users/show.json", url.Values{"screen_name": {screenName}}, &u)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{ScreenName: u.ScreenName, Name: u.Name, Location: u.Location}, nil
}

func (c *Client) LatestHomeStatus(ctx context.Context) (domain.Status, error) {
	var statuses []apiStatus
	err := c.do(ctx, http.MethodGet, "statuses/home_timeline.json", url.Values{"count": {"1"}}, &statuses)
	if err != nil {
		return domain.Status{}, err
	}

	if len(statuses) == 0 {
		return domain.Status{}, fmt.Errorf("empty home timeline: %w", domain.ErrNotFound)
	}

	return statuses[0].toDomain(), nil
}

func (c *Client) Follow(ctx context.Context, screenName string) error {
	var u apiUser
	return c.do(ctx, http.MethodPost, "friendships/create.json", url.Values{"screen_name": {screenName}}, &u)
}

func (c *Client) Unfollow(ctx context.Context, screenName string) error {
	var u apiUser
	return c.do(ctx, http.MethodPost, "friendships/destroy.json", url.Values{"screen_name": {screenName}}, &u)
}

func (c *Client) Post(ctx context.Context, text string) (domain.Status, error) {
	params := url.Values{"status": {text}}
	if c.factory.userAgent != "" {
		params.Set("source", c.factory.userAgent)
	}

	var s apiStatus
	if err := c.do(ctx, http.MethodPost, "statuses/update.json", params, &s); err != nil {
		return domain.Status{}, err
	}

	return s.toDomain(), nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Status, error) {
	params := url.Values{"q": {query}, "count": {strconv.Itoa(limit)}}

	var res searchResponse
	if err := c.do(ctx, http.MethodGet, "search/tweets.json", params, &res); err != nil {
		return nil, err
	}

	statuses := make([]domain.Status, 0, len(res.Statuses))
	for _, s := range res.Statuses {
		statuses = append(statuses, s.toDomain())
	}
	if len(statuses) > limit {
		statuses = statuses[:limit]
	}

	return statuses, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := c.factory.apiURL + "/" + path

	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.factory.userAgent != "" {
		req.Header.Set("User-Agent", c.factory.userAgent)
	}
	if !c.creds.Anonymous() {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	res, err := c.factory.http.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("social API response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{StatusCode: res.StatusCode, Message: errorMessage(payload)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("error unmarshalling response: %w", err)
	}

	return nil
}

func errorMessage(payload []byte) string {
	var e errorResponse
	if err := json.Unmarshal(payload, &e); err == nil {
		if len(e.Errors) > 0 && e.Errors[0].Message != "" {
			return e.Errors[0].Message
		}
		if e.Error != "" {
			return e.Error
		}
	}

	return strings.TrimSpace(string(payload))
}
