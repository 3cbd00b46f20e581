package session

// Registry holds every live session keyed by session ID. It is touched
// only by the server loop, so it needs no locking.
type Registry struct {
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (that *Registry) Add(s *Session) {
	that.sessions[s.ID] = s
}

func (that *Registry) Remove(id string) {
	delete(that.sessions, id)
}

func (that *Registry) Get(id string) (*Session, bool) {
	s, ok := that.sessions[id]
	return s, ok
}

func (that *Registry) All() []*Session {
	all := make([]*Session, 0, len(that.sessions))
	for _, s := range that.sessions {
		all = append(all, s)
	}

	return all
}

func (that *Registry) Len() int {
	return len(that.sessions)
}

// NameTaken - reports whether any logged-in session already uses the name.
// Sessions that have not resolved a name yet are skipped.
func (that *Registry) NameTaken(name string) bool {
	for _, s := range that.sessions {
		if s.Name != "" && s.Name == name {
			return true
		}
	}

	return false
}
