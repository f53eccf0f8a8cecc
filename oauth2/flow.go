package oauth2

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	auth "github.com/ojtech/go-auth"
)

// Flow orchestrates the provider handshake, provisioning, and token issue
// steps of an OAuth2 login.
type Flow struct {
	registry     *Registry
	stateManager StateManager
	provisioner  *Provisioner
	tokens       auth.TokenIssuer
	config       FlowConfig
	logger       auth.Logger
}

// FlowConfig configures the flow.
type FlowConfig struct {
	DefaultRedirectURI string
	StateEncryptionKey []byte
	StateHMACKey       []byte
	StateTTL           time.Duration
}

// FlowOption configures the flow.
type FlowOption func(*Flow)

// NewFlow creates a flow over the given collaborators.
func NewFlow(
	registry *Registry,
	provisioner *Provisioner,
	tokens auth.TokenIssuer,
	config FlowConfig,
	opts ...FlowOption,
) *Flow {
	cfg := config
	if cfg.StateTTL == 0 {
		cfg.StateTTL = 10 * time.Minute
	}

	f := &Flow{
		registry:    registry,
		provisioner: provisioner,
		tokens:      tokens,
		config:      cfg,
		logger:      auth.NewDefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	if f.stateManager == nil {
		f.stateManager = NewEncryptedStateManager(
			cfg.StateEncryptionKey,
			cfg.StateHMACKey,
			cfg.StateTTL,
		)
	}

	return f
}

// WithStateManager sets a custom state manager.
func WithStateManager(sm StateManager) FlowOption {
	return func(f *Flow) {
		f.stateManager = sm
	}
}

// WithFlowLogger sets the flow logger.
func WithFlowLogger(l auth.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// AuthRedirect contains the authorization URL for redirecting users.
type AuthRedirect struct {
	URL      string
	State    string
	Provider string
}

// AuthResult contains the result of a successful authentication.
type AuthResult struct {
	Identity    auth.Identity
	Token       string
	IsNewUser   bool
	Provider    string
	Profile     *Profile
	RedirectURI string
}

// BeginAuth starts the OAuth flow for a provider. The requested redirect
// URI travels inside the encrypted state and is validated on completion.
func (f *Flow) BeginAuth(ctx context.Context, providerName, redirectURI string) (*AuthRedirect, error) {
	provider, err := f.registry.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := computeCodeChallenge(codeVerifier)

	state := &FlowState{
		Nonce:        generateNonce(),
		Provider:     providerName,
		CodeVerifier: codeVerifier,
		RedirectURI:  redirectURI,
		IssuedAt:     time.Now().Unix(),
		ExpiresAt:    time.Now().Add(f.config.StateTTL).Unix(),
	}

	stateToken, err := f.stateManager.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	authURL := provider.AuthCodeURL(stateToken, WithPKCE(codeChallenge, "S256"))

	return &AuthRedirect{
		URL:      authURL,
		State:    stateToken,
		Provider: providerName,
	}, nil
}

// CompleteAuth finishes the OAuth flow after callback. The returned
// RedirectURI is the resolved post-auth target with the issued token
// appended as a `token` query parameter.
func (f *Flow) CompleteAuth(ctx context.Context, providerName, code, stateToken string) (*AuthResult, error) {
	state, err := f.stateManager.Decode(stateToken)
	if err != nil {
		if errors.Is(err, ErrStateExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrInvalidState.Clone().WithMetadata(map[string]any{
			"error": err.Error(),
		})
	}

	if state.Provider != providerName {
		return nil, ErrInvalidState.Clone().WithMetadata(map[string]any{
			"reason": "provider mismatch",
		})
	}

	provider, err := f.registry.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	token, err := provider.Exchange(ctx, code, WithCodeVerifier(state.CodeVerifier))
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, providerName, "exchange", err)
	}

	profile, err := provider.Profile(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrProfileFailed, providerName, "profile", err)
	}

	result, err := f.provisioner.Provision(ctx, providerName, profile)
	if err != nil {
		return nil, err
	}

	jwtToken, err := f.tokens.Generate(result.Identity)
	if err != nil {
		return nil, wrapAuthServiceFailure(err)
	}

	target := ResolveRedirectTarget(state.RedirectURI, f.config.DefaultRedirectURI)
	target = AppendTokenParam(target, jwtToken)

	return &AuthResult{
		Identity:    result.Identity,
		Token:       jwtToken,
		IsNewUser:   result.IsNewUser,
		Provider:    providerName,
		Profile:     profile,
		RedirectURI: target,
	}, nil
}

// Providers returns the registered provider names.
func (f *Flow) Providers() []string {
	return f.registry.Names()
}
