package session

import "sync"

// Store keeps one Session per operator identity for the life of the process.
type Store struct {
	mu       sync.Mutex
	opts     Options
	sessions map[string]*Session
}

func NewStore(opts Options) *Store {
	return &Store{opts: opts, sessions: map[string]*Session{}}
}

// Get returns the identity's session, creating an empty one on first use.
func (st *Store) Get(identity string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[identity]
	if !ok {
		s = New(st.opts)
		st.sessions[identity] = s
	}
	return s
}

func (st *Store) Reset(identity string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, identity)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
