package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/jeopardy/internal/board"
	"github.com/robalobadob/jeopardy/internal/game"
)

type builderFunc func(ctx context.Context) (*board.Board, error)

func (f builderFunc) Build(ctx context.Context) (*board.Board, error) { return f(ctx) }

func TestSaveGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := game.NewController("abc", nil, nil)

	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil || got != c {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReap(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Save(ctx, game.NewController("a", nil, nil))
	_ = s.Save(ctx, game.NewController("b", nil, nil))

	if n := s.Reap(ctx, time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("reaped %d fresh sessions", n)
	}
	if n := s.Reap(ctx, time.Now().Add(time.Second)); n != 2 {
		t.Fatalf("reaped %d, want 2", n)
	}
	if s.Len() != 0 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestReapSkipsLoadingSession(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	release := make(chan struct{})
	c := game.NewController("busy", builderFunc(func(ctx context.Context) (*board.Board, error) {
		<-release
		return nil, errors.New("no board")
	}), nil)
	_ = s.Save(ctx, c)

	done := make(chan struct{})
	go func() {
		_ = c.Reset(ctx)
		close(done)
	}()
	deadline := time.Now().Add(5 * time.Second)
	for c.Phase() != game.PhaseLoading {
		if time.Now().After(deadline) {
			t.Fatal("controller never started loading")
		}
		time.Sleep(time.Millisecond)
	}

	if n := s.Reap(ctx, time.Now().Add(time.Hour)); n != 0 {
		t.Fatalf("reaped %d loading sessions", n)
	}

	close(release)
	<-done
	if n := s.Reap(ctx, time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("reaped %d after load finished, want 1", n)
	}
}

func TestReapKeepsTouchedSession(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	c := game.NewController("idle-tab", nil, nil)
	_ = s.Save(ctx, c)

	time.Sleep(2 * time.Millisecond)
	cutoff := time.Now()
	c.Touch()
	if n := s.Reap(ctx, cutoff); n != 0 {
		t.Fatalf("reaped %d touched sessions", n)
	}
}
