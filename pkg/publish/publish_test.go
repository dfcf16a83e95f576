package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z1media/bannerpost/pkg/xapi"
)

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) AccessToken(echo.Context) (string, error) {
	return f.token, f.err
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads int
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, png []byte) (string, error) {
	f.mu.Lock()
	f.uploads++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "id-" + string(png), nil
}

type fakePoster struct {
	meErr       error
	postErr     error
	gotText     string
	gotMediaIDs []string
}

func (f *fakePoster) Me(context.Context) (*xapi.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &xapi.User{ID: "42", Username: "testuser"}, nil
}

func (f *fakePoster) PostTweet(_ context.Context, text string, mediaIDs []string) (*xapi.Tweet, error) {
	f.gotText = text
	f.gotMediaIDs = mediaIDs
	if f.postErr != nil {
		return nil, f.postErr
	}
	return &xapi.Tweet{ID: "777", Text: text}, nil
}

func dataURI(content string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(content))
}

func doPublish(t *testing.T, s *Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, s.Publish(echo.New().NewContext(req, rec)))
	return rec
}

func newFakeService(tokens *fakeTokens, uploader *fakeUploader, poster *fakePoster) *Service {
	return New(tokens, uploader, func(string) Poster { return poster })
}

func TestPublishUnauthorized(t *testing.T) {
	uploader := &fakeUploader{}
	posterInvoked := false
	s := New(&fakeTokens{err: fmt.Errorf("no cookie")}, uploader, func(string) Poster {
		posterInvoked = true
		return &fakePoster{}
	})

	rec := doPublish(t, s, `{"images":{"a":"data:image/png;base64,AAAA"}}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, uploader.uploads)
	assert.False(t, posterInvoked)
}

func TestPublishNoImages(t *testing.T) {
	uploader := &fakeUploader{}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, &fakePoster{})

	rec := doPublish(t, s, `{"images":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, uploader.uploads)
}

func TestPublishSuccess(t *testing.T) {
	uploader := &fakeUploader{}
	poster := &fakePoster{}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, poster)

	body := fmt.Sprintf(`{"images":{"b":%q,"a":%q}}`, dataURI("img-b"), dataURI("img-a"))
	rec := doPublish(t, s, body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "777", resp.Post.ID)

	assert.Equal(t, 2, uploader.uploads)
	assert.Equal(t, StatusText, poster.gotText)
	// media IDs collected in sorted label order
	assert.Equal(t, []string{"id-img-a", "id-img-b"}, poster.gotMediaIDs)
}

func TestPublishCapsMediaAtFour(t *testing.T) {
	uploader := &fakeUploader{}
	poster := &fakePoster{}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, poster)

	images := map[string]string{}
	for _, label := range []string{"a", "b", "c", "d", "e"} {
		images[label] = dataURI("img-" + label)
	}
	body, err := json.Marshal(Request{Images: images})
	require.NoError(t, err)

	rec := doPublish(t, s, string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, uploader.uploads)
	assert.Equal(t, []string{"id-img-a", "id-img-b", "id-img-c", "id-img-d"}, poster.gotMediaIDs)
}

func TestPublishBadDataURI(t *testing.T) {
	uploader := &fakeUploader{}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, &fakePoster{})

	rec := doPublish(t, s, `{"images":{"a":"garbage"}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, uploader.uploads)
}

func TestPublishPermissionDenied(t *testing.T) {
	poster := &fakePoster{postErr: &xapi.APIError{StatusCode: 403, Title: "Forbidden"}}
	s := newFakeService(&fakeTokens{token: "at"}, &fakeUploader{}, poster)

	rec := doPublish(t, s, fmt.Sprintf(`{"images":{"a":%q}}`, dataURI("img")))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "tweet.write")
}

func TestPublishRateLimited(t *testing.T) {
	uploader := &fakeUploader{err: &xapi.APIError{StatusCode: 429, Title: "Too Many Requests"}}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, &fakePoster{})

	rec := doPublish(t, s, fmt.Sprintf(`{"images":{"a":%q}}`, dataURI("img")))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again later")
}

func TestPublishOtherAPIError(t *testing.T) {
	poster := &fakePoster{meErr: &xapi.APIError{StatusCode: 401, Detail: "token expired"}}
	s := newFakeService(&fakeTokens{token: "at"}, &fakeUploader{}, poster)

	rec := doPublish(t, s, fmt.Sprintf(`{"images":{"a":%q}}`, dataURI("img")))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestPublishGenericFailure(t *testing.T) {
	uploader := &fakeUploader{err: fmt.Errorf("connection reset")}
	s := newFakeService(&fakeTokens{token: "at"}, uploader, &fakePoster{})

	rec := doPublish(t, s, fmt.Sprintf(`{"images":{"a":%q}}`, dataURI("img")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
