// Package auth implements the login exchange against the platform: fetch the
// login page, lift the anti-forgery token out of the form, post credentials,
// and verify the session cookie landed in the jar. Success is signaled by the
// cookie alone, never by status code.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/llget/lldl/errs"
	"github.com/llget/lldl/internal/logger"
	"github.com/llget/lldl/pkg/client"
)

// baseURL is a var so tests can point the exchange at a local server.
var baseURL = "https://www.linkedin.com"

const (
	loginPath      = "/login"
	loginSubmit    = "/uas/login-submit"
	csrfInputName  = "loginCsrfParam"
	sessionCookie  = "li_at"
	sessionIDName  = "JSESSIONID"
	csrfHeaderName = "Csrf-Token"
)

// Session carries the authenticated state every later request needs: the
// client whose jar holds the platform cookies, plus header-level tokens.
type Session struct {
	Client  *client.Client
	Headers map[string]string
}

// Login runs the credential exchange on c's cookie jar and returns the
// resulting session. The jar is the only thing written; after Login returns
// it is read-only for the rest of the run.
func Login(ctx context.Context, c *client.Client, username, password string) (*Session, error) {
	log := logger.WithComponent(logger.ComponentAuth)

	log.Info("login step 1 - getting csrf token")
	csrf, err := fetchCsrfToken(ctx, c)
	if err != nil {
		return nil, err
	}
	log.Debug("csrf token acquired", map[string]any{"csrf": csrf})
	log.Info("login step 1 - done")

	log.Info("login step 2 - logging in")
	form := url.Values{
		"session_key":      {username},
		"session_password": {password},
		csrfInputName:      {csrf},
		"isJsEnabled":      {"false"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+loginSubmit, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login submit: %w", err)
	}
	_ = resp.Body.Close()

	base, _ := url.Parse(baseURL)
	if _, ok := c.Cookie(base, sessionCookie); !ok {
		return nil, errs.ErrBadCredentials
	}

	sessionID, ok := c.Cookie(base, sessionIDName)
	if !ok {
		return nil, fmt.Errorf("%s cookie missing after login", sessionIDName)
	}
	// The cookie value arrives quoted (`"ajax:…"`); the header wants the bare
	// token.
	sessionID = strings.Trim(sessionID, `"`)
	log.Info("login step 2 - done")

	return &Session{
		Client: c,
		Headers: map[string]string{
			csrfHeaderName: sessionID,
		},
	}, nil
}

// fetchCsrfToken GETs the login page and parses the hidden CSRF input out of
// the form. An absent field means the platform changed its login page, which
// is fatal rather than retryable.
func fetchCsrfToken(ctx context.Context, c *client.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+loginPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch login page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse login page: %w", err)
	}

	csrf, ok := doc.Find(fmt.Sprintf("input[name=%s]", csrfInputName)).First().Attr("value")
	if !ok || strings.TrimSpace(csrf) == "" {
		return "", errs.ErrLoginPageChanged
	}
	return csrf, nil
}
