package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

func TestIssueAndResolve(t *testing.T) {
	p, err := NewJWTProvider("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.User{ID: "u1", DisplayName: "Ann", AvatarRef: "a.png"}
	token, err := p.Issue(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.ResolveSession(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestResolveRejects(t *testing.T) {
	p, _ := NewJWTProvider("test-secret", time.Hour)
	other, _ := NewJWTProvider("other-secret", time.Hour)
	expired, _ := NewJWTProvider("test-secret", time.Nanosecond)

	foreign, _ := other.Issue(domain.User{ID: "u1", DisplayName: "Ann"})
	stale, _ := expired.Issue(domain.User{ID: "u1", DisplayName: "Ann"})
	time.Sleep(10 * time.Millisecond)

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"foreign": foreign,
		"expired": stale,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := p.ResolveSession(context.Background(), token); !errors.Is(err, core.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
