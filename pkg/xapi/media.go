package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
)

// MediaCredentials is the long-lived application-level OAuth1
// credential pair required by the v1.1 media upload endpoint.
type MediaCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// MediaClient uploads media with OAuth1 request signing. It is a
// separate client context from the OAuth2 user client on purpose.
type MediaClient struct {
	httpClient *http.Client
	baseURL    string
}

type MediaOption func(*MediaClient)

func WithUploadBaseURL(baseURL string) MediaOption {
	return func(m *MediaClient) { m.baseURL = baseURL }
}

func NewMediaClient(creds MediaCredentials, opts ...MediaOption) *MediaClient {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	m := &MediaClient{
		httpClient: httpClient,
		baseURL:    DefaultUploadBaseURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type mediaUploadResponse struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
}

// Upload posts a PNG to the media upload endpoint and returns the
// media ID to reference in a tweet.
func (m *MediaClient) Upload(ctx context.Context, png []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("media", "image.png")
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return "", fmt.Errorf("writing media payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/1.1/media/upload.json", &body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading media: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ParseAPIError(resp.StatusCode, respBody)
	}

	var uploaded mediaUploadResponse
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", fmt.Errorf("parsing upload response: %w", err)
	}

	if uploaded.MediaIDString == "" {
		if uploaded.MediaID == 0 {
			return "", fmt.Errorf("upload response without media ID")
		}
		return fmt.Sprintf("%d", uploaded.MediaID), nil
	}
	return uploaded.MediaIDString, nil
}
