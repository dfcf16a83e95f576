// Package xapi is a minimal client for the parts of the X API this
// application uses: media upload (OAuth1 app credentials) and tweet
// posting (OAuth2 user token). The two credential contexts are kept
// as separate clients; X requires both to be valid simultaneously
// when posting media.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultAPIBaseURL    = "https://api.twitter.com"
	DefaultUploadBaseURL = "https://upload.twitter.com"
)

// Client talks to the v2 API on behalf of a user, authenticated with
// an OAuth2 bearer token obtained through the authorization code flow.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     DefaultAPIBaseURL,
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Me fetches the authenticated user. Used to verify the user token
// before uploading anything.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		Data User `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/2/users/me?user.fields=id,name,username", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

// PostTweet posts a tweet referencing the given media IDs. The caller
// is responsible for honoring the 4-attachment limit.
func (c *Client) PostTweet(ctx context.Context, text string, mediaIDs []string) (*Tweet, error) {
	req := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		req.Media = &tweetMedia{MediaIDs: mediaIDs}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling tweet request: %w", err)
	}

	var out struct {
		Data Tweet `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", payload, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ParseAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response body: %w", err)
		}
	}
	return nil
}
