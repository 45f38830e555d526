package google

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources: file-based tokens for CLI
// use, or tokens handed over by a workflow engine that manages credentials.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider provides tokens from disk files
type FileTokenProvider struct{}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount retrieves a token from disk for the specified account
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// StaticTokenProvider serves tokens from an in-memory map. A workflow engine
// that refreshes credentials itself can seed this provider and update it when
// tokens rotate.
type StaticTokenProvider struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewStaticTokenProvider creates a provider seeded with the given tokens.
// The map may be nil; tokens can be added later with SetToken.
func NewStaticTokenProvider(tokens map[string]*oauth2.Token) *StaticTokenProvider {
	if tokens == nil {
		tokens = make(map[string]*oauth2.Token)
	}
	return &StaticTokenProvider{tokens: tokens}
}

// SetToken stores or replaces the token for an account.
func (p *StaticTokenProvider) SetToken(account string, token *oauth2.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[account] = token
}

// GetTokenForAccount returns the stored token for the account.
func (p *StaticTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	token, ok := p.tokens[account]
	if !ok {
		return nil, fmt.Errorf("no token configured for account %s", account)
	}
	return token, nil
}

// HasTokenForAccount reports whether a token is stored for the account.
func (p *StaticTokenProvider) HasTokenForAccount(account string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.tokens[account]
	return ok
}
