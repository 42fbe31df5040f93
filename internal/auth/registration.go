package auth

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// PendingRegistration is a signup waiting for OTP verification. The password
// is already hashed before it enters the store.
type PendingRegistration struct {
	FullName  string
	Email     string
	Hash      string
	CreatedAt time.Time
}

// RegistrationStore keeps pending registrations keyed by email, so concurrent
// signups never see each other's data. Entries expire after the OTP TTL and
// re-registering an email replaces its previous entry.
type RegistrationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]PendingRegistration
}

func NewRegistrationStore(ttl time.Duration) *RegistrationStore {
	return &RegistrationStore{
		ttl:     ttl,
		pending: make(map[string]PendingRegistration),
	}
}

func (s *RegistrationStore) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

func (s *RegistrationStore) Put(reg PendingRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(time.Now())
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now()
	}
	s.pending[reg.Email] = reg
}

// Take removes and returns the pending registration for email. Expired or
// absent entries report false.
func (s *RegistrationStore) Take(email string) (PendingRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(time.Now())

	reg, ok := s.pending[email]
	if !ok {
		return PendingRegistration{}, false
	}

	delete(s.pending, email)
	return reg, true
}

func (s *RegistrationStore) purgeLocked(now time.Time) {
	for email, reg := range s.pending {
		if now.Sub(reg.CreatedAt) > s.ttl {
			delete(s.pending, email)
		}
	}
}

const DefaultRegistrationTTL = 10 * time.Minute

var Registrations = NewRegistrationStore(DefaultRegistrationTTL)

// InitRegistrationTTL overrides the OTP TTL from OTP_TTL_MIN (minutes).
func InitRegistrationTTL() {
	if val := os.Getenv("OTP_TTL_MIN"); val != "" {
		if mins, err := strconv.Atoi(val); err == nil && mins > 0 {
			Registrations.SetTTL(time.Duration(mins) * time.Minute)
		}
	}
}
