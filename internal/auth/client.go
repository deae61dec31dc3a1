package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"
)

// Client calls the backend identity REST API.
type Client struct {
	identity *resty.Client
	token    *resty.Client
	apiKey   string
	now      func() time.Time
}

func NewClient(identityBaseURL, tokenBaseURL, apiKey string) *Client {
	identity := resty.New().
		SetBaseURL(identityBaseURL).
		SetHeader("Content-Type", "application/json")
	token := resty.New().SetBaseURL(tokenBaseURL)

	return &Client{
		identity: identity,
		token:    token,
		apiKey:   apiKey,
		now:      time.Now,
	}
}

func (c *Client) Close() error {
	if err := c.identity.Close(); err != nil {
		return err
	}
	return c.token.Close()
}

type signUpRequest struct {
	ReturnSecureToken bool `json:"returnSecureToken"`
}

type signUpResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInAnonymously creates a new anonymous backend account.
func (c *Client) SignInAnonymously(ctx context.Context) (*Session, error) {
	response, err := c.identity.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(signUpRequest{ReturnSecureToken: true}).
		SetResult(&signUpResponse{}).
		Post("/accounts:signUp")
	if err != nil {
		return nil, fmt.Errorf("identity.Post(accounts:signUp) > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), errorMessage(response))
	}

	body := response.Result().(*signUpResponse)
	return c.newSession(body.IDToken, body.RefreshToken, body.LocalID, body.ExpiresIn)
}

// Refresh exchanges a refresh token for a new ID token of the same account.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	response, err := c.token.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&refreshResponse{}).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("token.Post(token) > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), errorMessage(response))
	}

	body := response.Result().(*refreshResponse)
	return c.newSession(body.IDToken, body.RefreshToken, body.UserID, body.ExpiresIn)
}

func (c *Client) newSession(idToken, refreshToken, uid, expiresIn string) (*Session, error) {
	if idToken == "" {
		return nil, fmt.Errorf("identity response has no id token")
	}
	session := &Session{
		UID:          uid,
		IDToken:      idToken,
		RefreshToken: refreshToken,
		Anonymous:    true,
	}

	tokenUID, tokenExpiry, err := parseIDToken(idToken)
	if err == nil {
		if session.UID == "" {
			session.UID = tokenUID
		}
		session.ExpiresAt = tokenExpiry
	}
	if session.ExpiresAt.IsZero() {
		if seconds, convErr := strconv.Atoi(expiresIn); convErr == nil {
			session.ExpiresAt = c.now().Add(time.Duration(seconds) * time.Second)
		}
	}
	if session.UID == "" {
		return nil, fmt.Errorf("identity response has no user id")
	}
	return session, nil
}

func errorMessage(response *resty.Response) string {
	var e apiError
	if err := json.Unmarshal([]byte(response.String()), &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return response.String()
}
