package memory

import (
	"testing"

	"github.com/tg383520/geo-quiz/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	service := app.NewQuizService(store, nil, nil, app.Options{})

	session := service.OpenSession()
	if session == nil {
		t.Fatalf("expected session")
	}
	if got, ok := store.Get(session.ID()); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}

	service.CloseSession(session.ID())
	if _, ok := store.Get(session.ID()); ok {
		t.Fatalf("expected session removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}
