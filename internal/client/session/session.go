// Package session tracks the authentication state of the client and
// notifies subscribers on state transitions.
//
// The one guarantee that matters here: login hooks fire exactly once
// per anonymous-to-authenticated edge. Duplicate sign-in signals for an
// already-active session are absorbed silently.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the well-known file holding the persisted credential.
const DefaultFileName = "session.json"

// record is the on-disk layout of the persisted session.
type record struct {
	Login string `json:"login"`
	Token string `json:"token"`
}

// Session holds the current authentication state and the persisted
// bearer credential.
type Session struct {
	mu    sync.Mutex
	path  string
	login string
	token string

	onLogin  []func(login string)
	onLogout []func()
}

// New returns a Session backed by a credential file in dir. A stored
// credential from a prior run is picked up without firing login hooks;
// corrupt or missing data means an anonymous session.
func New(dir string) *Session {
	s := &Session{path: filepath.Join(dir, DefaultFileName)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return s
	}
	s.login = rec.Login
	s.token = rec.Token
	return s
}

// Token returns the current bearer credential, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Login returns the signed-in user's login, or "" when anonymous.
func (s *Session) Login() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login
}

// Authenticated reports whether a credential is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// OnLogin registers a hook fired on each anonymous-to-authenticated
// transition.
func (s *Session) OnLogin(fn func(login string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogin = append(s.onLogin, fn)
}

// OnLogout registers a hook fired on each authenticated-to-anonymous
// transition.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// SetAuthenticated stores the credential and fires login hooks if the
// session was anonymous. Repeated calls while already authenticated
// only refresh the stored credential; hooks do not re-fire.
func (s *Session) SetAuthenticated(login, token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	wasAnonymous := s.token == ""
	s.login = login
	s.token = token
	err := s.persist()
	hooks := s.onLogin
	s.mu.Unlock()

	// Hooks run outside the lock: the reconciler invoked here reads
	// the session token through the gateway.
	if wasAnonymous {
		for _, fn := range hooks {
			fn(login)
		}
	}
	return err
}

// SetAnonymous discards the credential and fires logout hooks if the
// session was authenticated. Used on explicit sign-out and on
// credential expiry. Never fires the login path.
func (s *Session) SetAnonymous() error {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.login = ""
	s.token = ""
	err := os.Remove(s.path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	hooks := s.onLogout
	s.mu.Unlock()

	if wasAuthenticated {
		for _, fn := range hooks {
			fn()
		}
	}
	return err
}

// persist writes the credential file. Caller holds the mutex.
func (s *Session) persist() error {
	data, err := json.Marshal(record{Login: s.login, Token: s.token})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
