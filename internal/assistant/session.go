package assistant

import (
	"sync"
	"time"
)

// Phase is the current step of the booking conversation.
type Phase int

const (
	PhaseCollectPatient Phase = iota
	PhaseCollectIntent
	PhaseChooseDoctor
	PhaseChooseSlot
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCollectPatient:
		return "collect_patient"
	case PhaseCollectIntent:
		return "collect_intent"
	case PhaseChooseDoctor:
		return "choose_doctor"
	case PhaseChooseSlot:
		return "choose_slot"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// DoctorRef is a snapshot entry shown to the user for selection.
type DoctorRef struct {
	ID   string
	Name string
}

// SlotRef is a snapshot entry of one bookable availability.
type SlotRef struct {
	ID   string
	Date time.Time
}

// State holds everything the machine knows about one conversation. Which
// fields are meaningful is governed by Phase; transitions are strictly
// forward, except the exit keyword which jumps any phase to PhaseDone.
type State struct {
	Phase Phase

	PatientName  string
	PatientBirth string // ISO YYYY-MM-DD
	City         string

	SpecialtyID string
	Reason      string

	Doctors            []DoctorRef
	Slots              []SlotRef
	SelectedDoctorID   string
	SelectedDoctorName string
}

// Message is one entry of a session's append-only history.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is one ongoing conversation. Access is serialized through the
// store's per-session lock so concurrent messages for the same key cannot
// interleave a read-modify-write on the state.
type Session struct {
	ID      string
	History []Message
	State   State

	mu sync.Mutex
}

// Append records a turn in the history.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content, At: time.Now().UTC()})
}

// Store is the process-wide session map. Entries are created lazily on
// first message and, unless a TTL is configured, never evicted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	touched  map[string]time.Time
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a session store. ttl == 0 disables eviction, matching
// the original lifecycle; a positive ttl starts a background sweeper.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		touched:  make(map[string]time.Time),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

// GetOrCreate returns the session for id, creating it on first use.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	s.touched[id] = time.Now()
	return sess
}

// Get returns the session for id if it exists.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Do runs fn while holding the session's lock. All message handling for a
// session goes through here, giving per-key ordering.
func (s *Store) Do(sess *Session, fn func(*Session)) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
	s.mu.Lock()
	s.touched[sess.ID] = time.Now()
	s.mu.Unlock()
}

// Close stops the sweeper, if any.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, last := range s.touched {
				if now.Sub(last) > s.ttl {
					delete(s.sessions, id)
					delete(s.touched, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
