// ABOUTME: Typed wrappers for the wallet API endpoints
// ABOUTME: Auth, profile, and gift card calls routed through the pipeline

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// LoginParams is the login request body.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

// SignupParams is the signup request body.
type SignupParams struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id,omitempty"`
	DeviceID   string `json:"device_id,omitempty"`
}

// UpdateMeParams carries profile fields to change; nil fields are left as-is.
type UpdateMeParams struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Login exchanges credentials for a token pair. A 401 here means bad
// credentials and is surfaced directly.
func (c *Client) Login(ctx context.Context, p LoginParams) (*TokenPair, error) {
	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/login", WithBody(p))
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(raw)
}

// Signup registers a new account and returns its token pair.
func (c *Client) Signup(ctx context.Context, p SignupParams) (*TokenPair, error) {
	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/signup", WithBody(p))
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(raw)
}

// RefreshToken exchanges a refresh token for a new pair. Always issued
// without refresh semantics: a failure here must never trigger another
// refresh attempt.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}
	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/refresh", WithBody(body), WithoutRefresh())
	if err != nil {
		return nil, err
	}
	return decodeTokenPair(raw)
}

// Logout revokes the given refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	_, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/logout", WithBody(body))
	return err
}

// LogoutAll revokes every session of the authenticated user.
func (c *Client) LogoutAll(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/logout_all")
	return err
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	_, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/forgot_password", WithBody(body))
	return err
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	_, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/reset_password", WithBody(body))
	return err
}

// Me fetches the authenticated profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/api/v1/me")
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// UpdateMe patches the authenticated profile.
func (c *Client) UpdateMe(ctx context.Context, p UpdateMeParams) (*User, error) {
	raw, err := c.Do(ctx, http.MethodPatch, "/api/v1/me", WithBody(p))
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// UploadAvatar sends a new profile image as multipart form data.
func (c *Client) UploadAvatar(ctx context.Context, filename string, content []byte) (*User, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build avatar form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build avatar form: %w", err)
	}

	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/me/avatar",
		WithRawBody(buf.Bytes(), form.FormDataContentType()))
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// GiftCards lists the wallet's gift cards.
func (c *Client) GiftCards(ctx context.Context) ([]GiftCard, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/api/v1/me/gift_cards")
	if err != nil {
		return nil, err
	}
	var cards []GiftCard
	if raw != nil {
		if err := json.Unmarshal(raw, &cards); err != nil {
			return nil, fmt.Errorf("invalid response from backend: %w", err)
		}
	}
	return cards, nil
}

// GiftCard fetches a single gift card.
func (c *Client) GiftCard(ctx context.Context, id string) (*GiftCard, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/api/v1/me/gift_cards/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var card GiftCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &card, nil
}

// RedemptionToken mints a short-lived in-store redemption token for a card.
func (c *Client) RedemptionToken(ctx context.Context, id string) (*RedemptionToken, error) {
	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/me/gift_cards/"+url.PathEscape(id)+"/redemption_token")
	if err != nil {
		return nil, err
	}
	var token RedemptionToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &token, nil
}

func decodeTokenPair(raw json.RawMessage) (*TokenPair, error) {
	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("invalid response from backend: incomplete token pair")
	}
	return &pair, nil
}

func decodeUser(raw json.RawMessage) (*User, error) {
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &user, nil
}
