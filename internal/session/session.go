// Package session holds the per-session authentication state: the
// credential, the authenticated identity, and nothing else. The workflow
// serializes all access, so Session itself carries no lock.
package session

// State is the authentication lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session owns the credential and identity for one authenticated span.
type Session struct {
	state    State
	token    string
	identity string
}

// New returns an unauthenticated session.
func New() *Session {
	return &Session{}
}

// SetToken stores the candidate credential before it has been validated.
// The session stays unauthenticated until Begin.
func (s *Session) SetToken(token string) {
	s.token = token
}

// Begin transitions to Authenticated with the validated identity.
func (s *Session) Begin(identity string) {
	s.state = Authenticated
	s.identity = identity
}

// End discards the credential and identity and returns to Unauthenticated.
func (s *Session) End() {
	s.state = Unauthenticated
	s.token = ""
	s.identity = ""
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Token returns the current credential, or "" when none is held.
func (s *Session) Token() string { return s.token }

// Identity returns the authenticated user handle, or "" before Begin.
func (s *Session) Identity() string { return s.identity }

// Authenticated reports whether the session holds a validated credential.
func (s *Session) Authenticated() bool { return s.state == Authenticated }
