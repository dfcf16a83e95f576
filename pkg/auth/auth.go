// Package auth implements the OAuth2 authorization code flow with
// PKCE against X. All flow state lives in http-only cookies scoped to
// the browser session that started the flow; there is no server-side
// session store.
package auth

import (
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

	"github.com/labstack/echo/v4"
	xoauth2 "golang.org/x/oauth2"

	"github.com/z1media/bannerpost/pkg/metrics"
	"github.com/z1media/bannerpost/pkg/oauth2"
)

const (
	CookieState        = "oauth_state"
	CookieVerifier     = "oauth_code_verifier"
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

const (
	DefaultAuthorizeURL = "https://twitter.com/i/oauth2/authorize"
	DefaultTokenURL     = "https://api.twitter.com/2/oauth2/token"
)

const (
	pkceCookieTTL   = time.Hour
	accessTokenTTL  = 2 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Scopes requested from X. tweet.write is what the publish endpoint
// ultimately needs; offline.access yields a refresh token.
var Scopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// ErrNotAuthenticated is returned when no usable access token cookie
// is present on a request.
var ErrNotAuthenticated = errors.New("no access token cookie")

// errExchangeRejected marks a token exchange the provider refused, as
// opposed to one that failed to reach the provider at all.
var errExchangeRejected = errors.New("token exchange rejected")

type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// SecureCookies mirrors the deployment environment; on in production.
	SecureCookies bool

	// Sealer optionally encrypts token cookie values.
	Sealer *CookieSealer

	// AuthorizeURL and TokenURL default to the X endpoints and are
	// overridable for tests.
	AuthorizeURL string
	TokenURL     string

	HTTPClient *http.Client
}

type Service struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Service {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Service{cfg: cfg, httpClient: httpClient}
}

func (s *Service) MountRoutes(g *echo.Group) {
	g.GET("/start", s.Start)
	g.GET("/callback", s.Callback)
	g.GET("/check", s.Check)
}

type StartResponse struct {
	URL string `json:"url"`
}

type CheckResponse struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Start generates the PKCE material, stores it in short-lived cookies
// and returns the provider authorization URL for the client to follow.
func (s *Service) Start(c echo.Context) error {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		slog.Error("Missing X credentials",
			"client_id_set", s.cfg.ClientID != "",
			"client_secret_set", s.cfg.ClientSecret != "")
		metrics.AuthFlowsTotal.WithLabelValues("config_error").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to initialize X authentication"})
	}

	state := oauth2.GenerateState()
	verifier := oauth2.GenerateCodeVerifier()

	authURL := s.oauthConfig().AuthCodeURL(state, xoauth2.S256ChallengeOption(verifier))

	s.setCookie(c, CookieState, state, pkceCookieTTL)
	s.setCookie(c, CookieVerifier, verifier, pkceCookieTTL)

	metrics.AuthFlowsTotal.WithLabelValues("started").Inc()
	slog.Info("Authorization flow started", "authorize_url", s.cfg.AuthorizeURL)

	return c.JSON(http.StatusOK, StartResponse{URL: authURL})
}

// Callback handles the provider redirect. Every failure path redirects
// back to the application root with an error code in the query string;
// only the success path sets token cookies.
func (s *Service) Callback(c echo.Context) error {
	if err := s.handleCallback(c); err != nil {
		slog.Error("Callback failed", "error", err)
		metrics.AuthFlowsTotal.WithLabelValues("error").Inc()
		return s.redirectError(c, "callback_error", "")
	}
	return nil
}

func (s *Service) handleCallback(c echo.Context) error {
	if errCode := c.QueryParam("error"); errCode != "" {
		desc := c.QueryParam("error_description")
		slog.Error("Authorization rejected by provider", "error", errCode, "error_description", desc)
		metrics.AuthFlowsTotal.WithLabelValues("provider_error").Inc()
		return s.redirectError(c, errCode, desc)
	}

	state := c.QueryParam("state")
	code := c.QueryParam("code")
	storedState := readCookie(c, CookieState)
	verifier := readCookie(c, CookieVerifier)

	if state == "" || storedState == "" || code == "" || verifier == "" || state != storedState {
		metrics.AuthFlowsTotal.WithLabelValues("invalid_state").Inc()
		return s.redirectError(c, "invalid_state", "")
	}

	token, err := s.exchange(c.Request().Context(), code, verifier)
	if err != nil {
		if errors.Is(err, errExchangeRejected) {
			metrics.AuthFlowsTotal.WithLabelValues("exchange_failed").Inc()
			return s.redirectError(c, "token_exchange_failed", "")
		}
		return err
	}

	accessValue := token.AccessToken
	if s.cfg.Sealer != nil {
		if accessValue, err = s.cfg.Sealer.Seal(accessValue); err != nil {
			return err
		}
	}
	s.setCookie(c, CookieAccessToken, accessValue, accessTokenTTL)

	if token.RefreshToken != "" {
		refreshValue := token.RefreshToken
		if s.cfg.Sealer != nil {
			if refreshValue, err = s.cfg.Sealer.Seal(refreshValue); err != nil {
				return err
			}
		}
		s.setCookie(c, CookieRefreshToken, refreshValue, refreshTokenTTL)
	}

	s.clearCookie(c, CookieState)
	s.clearCookie(c, CookieVerifier)

	metrics.AuthFlowsTotal.WithLabelValues("completed").Inc()
	slog.Info("Authorization flow completed")

	return c.Redirect(http.StatusFound, "/")
}

// Check reports whether an access token cookie is present. It never
// validates the token against the provider; this is a UI convenience,
// not a security boundary.
func (s *Service) Check(c echo.Context) error {
	token := readCookie(c, CookieAccessToken)
	return c.JSON(http.StatusOK, CheckResponse{IsAuthenticated: token != ""})
}

// AccessToken returns the provider access token carried by the
// request, unsealing it if cookie sealing is configured.
func (s *Service) AccessToken(c echo.Context) (string, error) {
	value := readCookie(c, CookieAccessToken)
	if value == "" {
		return "", ErrNotAuthenticated
	}
	if s.cfg.Sealer != nil {
		return s.cfg.Sealer.Open(value)
	}
	return value, nil
}

func (s *Service) oauthConfig() *xoauth2.Config {
	return &xoauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  s.cfg.CallbackURL,
		Scopes:       Scopes,
		Endpoint: xoauth2.Endpoint{
			AuthURL:  s.cfg.AuthorizeURL,
			TokenURL: s.cfg.TokenURL,
		},
	}
}

// exchange trades the authorization code and verifier for tokens. The
// client credentials travel both in the form body and as Basic auth;
// X accepts either and some providers require one or the other.
func (s *Service) exchange(ctx context.Context, code, verifier string) (*oauth2.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.CallbackURL)
	form.Set("code_verifier", verifier)
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Token exchange failed", "status", resp.StatusCode, "body", string(body))
		return nil, errExchangeRejected
	}

	var token oauth2.TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	if token.AccessToken == "" {
		slog.Error("Token response without access token", "body", string(body))
		return nil, errExchangeRejected
	}

	return &token, nil
}

func (s *Service) redirectError(c echo.Context, code, description string) error {
	params := url.Values{}
	params.Set("error", code)
	if description != "" {
		params.Set("error_description", description)
	}
	return c.Redirect(http.StatusFound, "/?"+params.Encode())
}

func (s *Service) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
