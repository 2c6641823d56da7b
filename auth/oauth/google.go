package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"secretserver/auth/storage"
	"secretserver/auth/users"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultCallbackURL matches the single fixed callback target the
	// Google console is registered with for local runs.
	DefaultCallbackURL = "http://localhost:3000/auth/google/secrets"

	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// ErrExchange covers every way the authorization-code exchange can go
// wrong: a bad code, a provider error, or a profile without a subject id.
var ErrExchange = errors.New("oauth exchange failed")

type Config struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	CallbackURL  string `toml:"callback_url"`
	UserInfoURL  string `toml:"userinfo_url"`

	// Endpoint overrides the Google endpoints, for tests.
	Endpoint oauth2.Endpoint `toml:"-"`
}

// Service implements sign-in with Google: it builds the authorize
// redirect, exchanges the callback code for a profile and maps the
// profile's subject id onto exactly one stored user.
type Service struct {
	oauth       *oauth2.Config
	storage     storage.AuthStorage
	userInfoURL string
	log         *logrus.Entry
}

func New(cfg Config, authStorage storage.AuthStorage, l *logrus.Logger) *Service {
	callbackURL := cfg.CallbackURL
	if callbackURL == "" {
		callbackURL = DefaultCallbackURL
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"profile"},
			Endpoint:     endpoint,
		},
		storage:     authStorage,
		userInfoURL: userInfoURL,
		log:         l.WithField("from", "oauth-service"),
	}
}

// AuthCodeURL returns the provider authorize URL to redirect the
// browser to. The state value must be pinned by the caller and checked
// on the callback.
func (s *Service) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code for a profile and
// finds or creates the matching user. No partial user is left behind
// on failure.
func (s *Service) HandleCallback(ctx context.Context, code string) (users.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return users.User{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return users.User{}, err
	}
	if profile.Sub == "" {
		return users.User{}, fmt.Errorf("%w: profile has no subject id", ErrExchange)
	}
	user, err := s.storage.FindOrCreateByGoogleID(ctx, profile.Sub)
	if err != nil {
		return users.User{}, err
	}
	s.log.WithField("user_id", user.ID).Debug("google sign-in resolved")
	return user, nil
}

type profile struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

func (s *Service) fetchProfile(ctx context.Context, token *oauth2.Token) (profile, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return profile{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return profile{}, fmt.Errorf("%w: userinfo status %d", ErrExchange, resp.StatusCode)
	}
	var p profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return profile{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return p, nil
}
