// Package publish posts resized banners to X: every image is uploaded
// through the OAuth1 media endpoint, then a single tweet referencing
// the uploaded media is posted with the user's OAuth2 token.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"github.com/z1media/bannerpost/pkg/metrics"
	"github.com/z1media/bannerpost/pkg/util"
	"github.com/z1media/bannerpost/pkg/xapi"
)

// StatusText is the fixed tweet text accompanying the banners.
const StatusText = "Check out these resized images! 🖼️ #ImageResizer"

// maxMediaAttachments is the X limit on media per tweet.
const maxMediaAttachments = 4

// TokenSource yields the user's access token from a request, if any.
type TokenSource interface {
	AccessToken(c echo.Context) (string, error)
}

// Uploader is the OAuth1-keyed media upload context.
type Uploader interface {
	Upload(ctx context.Context, png []byte) (string, error)
}

// Poster is the OAuth2-keyed user context.
type Poster interface {
	Me(ctx context.Context) (*xapi.User, error)
	PostTweet(ctx context.Context, text string, mediaIDs []string) (*xapi.Tweet, error)
}

type Request struct {
	Images map[string]string `json:"images"`
}

type Response struct {
	Success bool        `json:"success"`
	Post    *xapi.Tweet `json:"post"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type Service struct {
	tokens    TokenSource
	uploader  Uploader
	newPoster func(accessToken string) Poster
}

func New(tokens TokenSource, uploader Uploader, newPoster func(accessToken string) Poster) *Service {
	return &Service{tokens: tokens, uploader: uploader, newPoster: newPoster}
}

// Publish is the POST /publish handler.
func (s *Service) Publish(c echo.Context) error {
	token, err := s.tokens.AccessToken(c)
	if err != nil || token == "" {
		metrics.PublishesTotal.WithLabelValues("unauthorized").Inc()
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Not authenticated. Please login with X first."})
	}

	var req Request
	if err := c.Bind(&req); err != nil || len(req.Images) == 0 {
		metrics.PublishesTotal.WithLabelValues("invalid_request").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No images provided"})
	}

	ctx := c.Request().Context()
	jobID := ksuid.New().String()
	slog.Info("Publishing banners", "job_id", jobID, "images", len(req.Images))

	poster := s.newPoster(token)

	user, err := poster.Me(ctx)
	if err != nil {
		return s.fail(c, jobID, err)
	}
	slog.Info("Authenticated user verified", "job_id", jobID, "user_id", user.ID, "username", user.Username)

	// map iteration order is random; sort labels so media IDs are
	// collected deterministically
	labels := make([]string, 0, len(req.Images))
	for label := range req.Images {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	images := make([][]byte, len(labels))
	for i, label := range labels {
		if images[i], err = util.ParseDataURI(req.Images[label]); err != nil {
			return s.fail(c, jobID, err)
		}
	}

	mediaIDs, err := s.uploadAll(ctx, images)
	if err != nil {
		return s.fail(c, jobID, err)
	}

	if len(mediaIDs) > maxMediaAttachments {
		mediaIDs = mediaIDs[:maxMediaAttachments]
	}

	tweet, err := poster.PostTweet(ctx, StatusText, mediaIDs)
	if err != nil {
		return s.fail(c, jobID, err)
	}

	metrics.PublishesTotal.WithLabelValues("ok").Inc()
	slog.Info("Banners published", "job_id", jobID, "tweet_id", tweet.ID, "media", len(mediaIDs))

	return c.JSON(http.StatusOK, Response{Success: true, Post: tweet})
}

// uploadAll uploads every image concurrently, preserving input order
// in the returned IDs. The join is all-or-nothing: any upload failure
// fails the whole batch. Already-uploaded media is left to the
// platform's own garbage collection of unreferenced uploads.
func (s *Service) uploadAll(ctx context.Context, images [][]byte) ([]string, error) {
	ids := make([]string, len(images))
	errs := make([]error, len(images))

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func(i int, img []byte) {
			defer wg.Done()
			ids[i], errs[i] = s.uploader.Upload(ctx, img)
		}(i, img)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// fail translates an upstream failure into an HTTP response per the
// fixed taxonomy: permission and rate-limit errors get dedicated
// hints, other API errors carry the provider's status, and anything
// else is a generic internal error.
func (s *Service) fail(c echo.Context, jobID string, err error) error {
	var apiErr *xapi.APIError
	if errors.As(err, &apiErr) {
		slog.Error("X API error", "job_id", jobID, "status", apiErr.StatusCode, "title", apiErr.Title, "detail", apiErr.Detail)

		switch apiErr.Kind() {
		case xapi.KindPermissionDenied:
			metrics.PublishesTotal.WithLabelValues("permission_denied").Inc()
			return c.JSON(http.StatusForbidden, errorResponse{
				Error:   "X authorization failed",
				Details: "Please ensure you have granted write permissions to the app and try logging in again. Required scopes: tweet.read, tweet.write, users.read",
				Code:    http.StatusForbidden,
			})
		case xapi.KindRateLimited:
			metrics.PublishesTotal.WithLabelValues("rate_limited").Inc()
			return c.JSON(http.StatusTooManyRequests, errorResponse{
				Error:   "Rate limit exceeded",
				Details: "Please try again later.",
				Code:    http.StatusTooManyRequests,
			})
		default:
			metrics.PublishesTotal.WithLabelValues("upstream_error").Inc()
			status := apiErr.StatusCode
			if status == 0 {
				status = http.StatusInternalServerError
			}
			return c.JSON(status, errorResponse{
				Error:   "Failed to post to X",
				Details: apiErr.Detail,
				Code:    status,
			})
		}
	}

	slog.Error("Publish failed", "job_id", jobID, "error", err)
	metrics.PublishesTotal.WithLabelValues("error").Inc()
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Error:   "Internal server error",
		Details: err.Error(),
	})
}
