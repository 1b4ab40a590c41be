package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tg383520/geo-quiz/internal/app"
)

// SessionStore keeps sessions in process and mirrors their liveness in Redis
// so operators can count live players across replicas:
//
//	SET geoquiz:session:{id} {instance} EX <ttl>
//
// Quiz state itself never leaves the process.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	instance string

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration, instance string) *SessionStore {
	if instance == "" {
		instance = "1"
	}
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		instance: instance,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), sessionKey(session.ID()), s.instance, s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		_ = s.client.Del(context.Background(), sessionKey(id)).Err()
	}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Touch extends the liveness marker of a session that is still in use.
func (s *SessionStore) Touch(ctx context.Context, id string) error {
	if s.ttl <= 0 {
		return nil
	}
	return s.client.Expire(ctx, sessionKey(id), s.ttl).Err()
}

func sessionKey(id string) string {
	return "geoquiz:session:" + id
}
