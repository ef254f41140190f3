package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/fivetwenty-io/psclient/internal/constants"
)

// expiryBuffer treats tokens as expired slightly early so that a token is
// never sent in its last seconds of validity.
const expiryBuffer = constants.TokenExpirationBuffer

// Token is an OAuth2 access token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
	// ExpiresAt is zero for tokens that do not expire.
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token can be used now.
func (t *Token) Valid() bool {
	return t.ValidAt(time.Now())
}

// ValidAt reports whether the token can be used at now.
func (t *Token) ValidAt(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return now.Add(expiryBuffer).Before(t.ExpiresAt)
}

func tokenFromOAuth2(tok *oauth2.Token, now time.Time) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		IssuedAt:     now,
		ExpiresAt:    tok.Expiry,
	}

	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}

	if out.TokenType == "" {
		out.TokenType = "bearer"
	}

	return out
}

// TokenManager supplies access tokens to the request pipeline.
type TokenManager interface {
	// GetToken returns a valid access token, renewing it if needed.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces a renewal.
	RefreshToken(ctx context.Context) error
	// SetToken installs a token obtained elsewhere.
	SetToken(token string, expiresAt time.Time)
	// Expire marks token as rejected by the server. It has no effect if a
	// different token has been installed since.
	Expire(token string)
}

// StaticTokenManager always returns the same token.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a manager for a pre-issued token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken implements TokenManager.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

// RefreshToken implements TokenManager. Static tokens cannot be renewed.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRenew
}

// SetToken implements TokenManager.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// Expire implements TokenManager. The token keeps being used.
func (m *StaticTokenManager) Expire(token string) {}
