package provider

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/prperemyshlev/account-linker/internal/domain"
	"go.uber.org/zap"
)

const flowCookieName = "oauth_flow"

const (
	keyProvider    = "provider"
	keyState       = "state"
	keySession     = "session"
	keyCallbackURL = "callback_url"
)

var (
	// ErrUnknownProvider is returned for provider ids that are not enabled
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrAccessDenied is returned when the user declined consent at the provider
	ErrAccessDenied = errors.New("access denied by provider")

	// ErrInvalidState is returned when the callback does not belong to a flow started here
	ErrInvalidState = errors.New("invalid oauth state")
)

// Completion is the outcome of a finished OAuth flow
type Completion struct {
	Profile     domain.ProviderProfile
	CallbackURL string
}

// Begin starts an OAuth flow and returns the provider consent URL.
// The state and provider session are kept in a short-lived signed cookie.
func (r *Registry) Begin(w http.ResponseWriter, req *http.Request, id, callbackURL string) (string, error) {
	p, ok := r.OAuth(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}

	state := uuid.New().String()
	sess, err := p.BeginAuth(state)
	if err != nil {
		return "", fmt.Errorf("failed to begin %s auth: %w", id, err)
	}

	authURL, err := sess.GetAuthURL()
	if err != nil {
		return "", fmt.Errorf("failed to get %s auth url: %w", id, err)
	}

	// A stale or tampered cookie yields a fresh session alongside the error
	flow, _ := r.store.New(req, flowCookieName)
	flow.Values[keyProvider] = id
	flow.Values[keyState] = state
	flow.Values[keySession] = sess.Marshal()
	flow.Values[keyCallbackURL] = callbackURL

	if err := flow.Save(req, w); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return authURL, nil
}

// Complete finishes the OAuth flow for the callback request and returns the provider profile
func (r *Registry) Complete(w http.ResponseWriter, req *http.Request, id string) (*Completion, error) {
	p, ok := r.OAuth(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}

	params := req.URL.Query()
	if providerErr := params.Get("error"); providerErr != "" {
		r.clear(w, req)
		if providerErr == "access_denied" {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("%s returned error %q", id, providerErr)
	}

	flow, err := r.store.Get(req, flowCookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	storedProvider, _ := flow.Values[keyProvider].(string)
	state, _ := flow.Values[keyState].(string)
	raw, _ := flow.Values[keySession].(string)
	callbackURL, _ := flow.Values[keyCallbackURL].(string)

	if storedProvider != id || state == "" ||
		subtle.ConstantTimeCompare([]byte(state), []byte(params.Get("state"))) != 1 {
		return nil, ErrInvalidState
	}

	r.clear(w, req)

	sess, err := p.UnmarshalSession(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to restore %s session: %w", id, err)
	}

	if _, err := sess.Authorize(p, params); err != nil {
		return nil, fmt.Errorf("failed to authorize with %s: %w", id, err)
	}

	user, err := p.FetchUser(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s user: %w", id, err)
	}

	return &Completion{
		Profile:     profileFromUser(id, user),
		CallbackURL: callbackURL,
	}, nil
}

func (r *Registry) clear(w http.ResponseWriter, req *http.Request) {
	flow, _ := r.store.New(req, flowCookieName)
	flow.Options.MaxAge = -1
	if err := flow.Save(req, w); err != nil {
		r.logger.Debug("failed to clear oauth state", zap.Error(err))
	}
}

func profileFromUser(id string, user goth.User) domain.ProviderProfile {
	name := user.Name
	if name == "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	return domain.ProviderProfile{
		Provider:          id,
		ProviderAccountID: user.UserID,
		Email:             user.Email,
		Name:              name,
		NickName:          user.NickName,
		Image:             user.AvatarURL,
	}
}
