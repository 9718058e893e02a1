package credentials

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// RefreshLeeway is how close to expiry an access token is renewed
const RefreshLeeway = 60 * time.Second

// Scopes are requested on every authorization
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/drive.file",
}

// Endpoints locates the provider's OAuth and userinfo endpoints
type Endpoints struct {
	Issuer      string
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	JWKSURL     string
}

// GoogleEndpoints are the production Google endpoints
var GoogleEndpoints = Endpoints{
	Issuer:      "https://accounts.google.com",
	AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:    "https://oauth2.googleapis.com/token",
	UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	JWKSURL:     "https://www.googleapis.com/oauth2/v3/certs",
}

// Options configures a Broker
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoints    Endpoints
	HTTPClient   *http.Client // nil uses http.DefaultClient
}

// Broker talks to the identity provider on behalf of a signed in user
type Broker struct {
	oauth      *oauth2.Config
	provider   *oidc.Provider
	httpClient *http.Client
}

// NewBroker creates a broker for the given client registration
func NewBroker(ctx context.Context, opts Options) *Broker {
	endpoints := opts.Endpoints
	if endpoints.TokenURL == "" {
		endpoints = GoogleEndpoints
	}

	provider := (&oidc.ProviderConfig{
		IssuerURL:   endpoints.Issuer,
		AuthURL:     endpoints.AuthURL,
		TokenURL:    endpoints.TokenURL,
		UserInfoURL: endpoints.UserInfoURL,
		JWKSURL:     endpoints.JWKSURL,
	}).NewProvider(ctx)

	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &Broker{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		provider:   provider,
		httpClient: opts.HTTPClient,
	}
}

func (b *Broker) clientContext(ctx context.Context) context.Context {
	if b.httpClient == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	return oidc.ClientContext(ctx, b.httpClient)
}

// AuthURL builds the consent screen URL. Offline access with a forced consent
// prompt makes the provider return a refresh token every time.
func (b *Broker) AuthURL(state string) string {
	return b.oauth.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens. A grant without a refresh
// token is rejected because later renewals depend on it.
func (b *Broker) Exchange(ctx context.Context, code string) (Tokens, error) {
	tok, err := b.oauth.Exchange(b.clientContext(ctx), code)
	if err != nil {
		return Tokens{}, upstreamError("exchange code", err)
	}
	if tok.RefreshToken == "" {
		return Tokens{}, &apperrors.UpstreamError{Op: "exchange code", Err: apperrors.ErrMissingRefreshToken}
	}
	return tokensFrom(tok), nil
}

// Refresh obtains a new access token. The refresh token is never rotated, the
// returned Tokens always carry the one passed in.
func (b *Broker) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, &apperrors.AuthenticationError{Cause: apperrors.ErrMissingRefreshToken}
	}

	ctx = b.clientContext(ctx)
	tok, err := b.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return Tokens{}, upstreamError("refresh token", err)
	}

	tokens := tokensFrom(tok)
	tokens.RefreshToken = refreshToken
	return tokens, nil
}

// FetchIdentity returns the account behind accessToken
func (b *Broker) FetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := b.provider.UserInfo(b.clientContext(ctx), ts)
	if err != nil {
		return Identity{}, &apperrors.UpstreamError{Op: "fetch identity", Err: err}
	}

	// the v2 endpoint names the subject "id", the OIDC one "sub"
	var claims struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := info.Claims(&claims); err != nil {
		return Identity{}, &apperrors.UpstreamError{Op: "fetch identity", Err: err}
	}
	if claims.ID == "" {
		claims.ID = info.Subject
	}
	if claims.Email == "" {
		claims.Email = info.Email
	}
	if claims.ID == "" {
		return Identity{}, &apperrors.UpstreamError{Op: "fetch identity", Err: errors.New("userinfo response has no subject")}
	}

	return Identity{ID: claims.ID, Email: claims.Email, Name: claims.Name}, nil
}

// EnsureFresh renews cred when its access token expires within RefreshLeeway.
// The bool reports whether a new credential was returned; callers persist it
// when true. cred itself is never modified.
func (b *Broker) EnsureFresh(ctx context.Context, cred Credential) (Credential, bool, error) {
	if !cred.ExpiresWithin(RefreshLeeway, NowTimeFunc()) {
		return cred, false, nil
	}

	tokens, err := b.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return cred, false, err
	}

	renewed := cred
	renewed.AccessToken = tokens.AccessToken
	renewed.ExpiresAt = NowTimeFunc().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	if tokens.Scope != "" {
		renewed.Scope = tokens.Scope
	}
	return renewed, true, nil
}

func tokensFrom(tok *oauth2.Token) Tokens {
	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	scope, _ := tok.Extra("scope").(string)

	return Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
		Scope:        scope,
	}
}

func upstreamError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &apperrors.UpstreamError{Op: op, Status: retrieveErr.Response.StatusCode, Err: err}
	}
	return &apperrors.UpstreamError{Op: op, Err: err}
}
