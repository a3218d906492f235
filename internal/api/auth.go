package api

import (
	"context"
	"net/http"
)

// User is the profile snapshot cached alongside the tokens
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Message      string `json:"message"`
}

// RefreshResponse represents a token refresh response. The backend
// rotates the refresh token only sometimes; a rotated token is present
// when it does.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// MessageResponse is the generic {message} payload of the
// signup/email/password flows.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login authenticates with the backend and returns the token pair.
// The caller (session manager) owns persisting them.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{
		Email:    email,
		Password: password,
	}

	var loginResp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", req, &loginResp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &loginResp, nil
}

// RefreshToken exchanges the refresh token for a new access token.
// The exchange itself must never recurse into the 401 retry cycle.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := map[string]string{
		"refreshToken": refreshToken,
	}

	var refreshResp RefreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/token", req, &refreshResp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &refreshResp, nil
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new user account
func (c *Client) Signup(ctx context.Context, name, email, password string) (*MessageResponse, error) {
	req := SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}

	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/signup", req, &resp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RequestEmailVerification asks the backend to send a verification
// code to the given address.
func (c *Client) RequestEmailVerification(ctx context.Context, email string) (*MessageResponse, error) {
	req := map[string]string{
		"email": email,
	}

	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/email", req, &resp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RequestPasswordReset starts the password reset flow for an email
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error) {
	req := map[string]string{
		"email": email,
	}

	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/password/reset", req, &resp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ResetPassword completes the password reset flow with the emailed
// verification code.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (*MessageResponse, error) {
	req := map[string]string{
		"email":    email,
		"code":     code,
		"password": newPassword,
	}

	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/password", req, &resp, reqOpts{noAuth: true, noRetry: true}); err != nil {
		return nil, err
	}

	return &resp, nil
}
