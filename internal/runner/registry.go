package runner

import (
	"context"
	"sync"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/session"

	log "github.com/sirupsen/logrus"
)

type key struct {
	userID    string
	workoutID string
}

// Session is one in-flight run of a workout. Its methods serialize access to
// the machine, so concurrent requests for the same workout are safe.
type Session struct {
	mu      sync.Mutex
	machine *Machine
}

// Do runs fn with exclusive access to the machine.
func (s *Session) Do(fn func(m *Machine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.machine)
}

// Registry holds the in-flight runner sessions of every user.
type Registry struct {
	mu       sync.Mutex
	sessions map[key]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[key]*Session)}
}

// Start returns the user's session for the workout, creating one positioned
// on the first set when none exists. The bool reports whether a session was resumed.
func (r *Registry) Start(userID string, w *domain.Workout) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID: userID, workoutID: w.ID}
	if s, ok := r.sessions[k]; ok {
		return s, true
	}
	s := &Session{machine: New(w)}
	r.sessions[k] = s
	return s, false
}

func (r *Registry) Get(userID, workoutID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key{userID: userID, workoutID: workoutID}]
	return s, ok
}

func (r *Registry) Remove(userID, workoutID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key{userID: userID, workoutID: workoutID})
}

// DropUser discards every session of the user and returns how many there were.
func (r *Registry) DropUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k := range r.sessions {
		if k.userID == userID {
			delete(r.sessions, k)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Watch drops a user's sessions when they sign out. It returns when ctx is
// done or the event channel is closed.
func (r *Registry) Watch(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type != session.SignedOut {
				continue
			}
			if n := r.DropUser(e.UserID); n > 0 {
				log.WithFields(log.Fields{"user": e.UserID, "sessions": n}).Info("runner sessions discarded after sign out")
			}
		}
	}
}
