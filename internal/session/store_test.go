package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestMain verifies the sweep goroutine never outlives its store.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := NewStore(opts...)
	t.Cleanup(s.Close)
	return s
}

func TestAddMessage_ImplicitCreation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	if s.SessionCount() != 0 {
		t.Fatalf("expected empty store, got %d sessions", s.SessionCount())
	}

	s.AddMessage("s1", "user", "hello")

	if s.SessionCount() != 1 {
		t.Errorf("first append should create the session, count=%d", s.SessionCount())
	}
	got := s.History("s1")
	if len(got) != 1 || got[0].Role != "user" || got[0].Content != "hello" {
		t.Errorf("unexpected history: %+v", got)
	}
}

func TestHistory_UnknownSessionIsEmptyNotError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	got := s.History("never-seen")
	if got == nil || len(got) != 0 {
		t.Errorf("unknown session must yield an empty slice, got %#v", got)
	}
}

func TestAddMessage_TrimsOldestBeyondMax(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, WithMaxHistory(20))

	for i := 1; i <= 25; i++ {
		s.AddMessage("s1", "user", fmt.Sprintf("msg-%d", i))
	}

	got := s.History("s1")
	if len(got) != 20 {
		t.Fatalf("history length = %d, want 20", len(got))
	}
	// Exactly the 20 most recent, in original order.
	for i, msg := range got {
		want := fmt.Sprintf("msg-%d", i+6)
		if msg.Content != want {
			t.Errorf("history[%d] = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.AddMessage("s1", "user", "original")

	got := s.History("s1")
	got[0].Content = "mutated"

	if s.History("s1")[0].Content != "original" {
		t.Error("History must return a copy, not the backing slice")
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.AddMessage("s1", "user", "hello")
	s.AddMessage("s2", "user", "hello")

	s.ClearSession("s1")

	if s.SessionCount() != 1 {
		t.Errorf("count = %d after clear, want 1", s.SessionCount())
	}
	if len(s.History("s1")) != 0 {
		t.Error("cleared session still has history")
	}
	if len(s.History("s2")) != 1 {
		t.Error("clear removed the wrong session")
	}
}

func TestSweep_ReapsIdleSessions(t *testing.T) {
	t.Parallel()

	// Sweep interval far in the future; the test drives sweeps manually.
	s := newTestStore(t, WithTTL(time.Minute), WithSweepInterval(time.Hour))

	base := time.Now()
	s.now = func() time.Time { return base }
	s.AddMessage("idle", "user", "hi")
	s.AddMessage("active", "user", "hi")

	// Time passes; only "active" gets touched again.
	s.now = func() time.Time { return base.Add(30 * time.Second) }
	s.AddMessage("active", "user", "still here")

	s.now = func() time.Time { return base.Add(70 * time.Second) }
	s.sweep()

	if len(s.History("idle")) != 0 {
		t.Error("idle session should be reaped after the TTL")
	}
	if len(s.History("active")) != 2 {
		t.Error("recently active session must survive the sweep")
	}
	if s.SessionCount() != 1 {
		t.Errorf("count = %d after sweep, want 1", s.SessionCount())
	}
}

func TestSweep_RefreshOnAppendPreventsReaping(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, WithTTL(time.Minute), WithSweepInterval(time.Hour))

	base := time.Now()
	s.now = func() time.Time { return base }
	s.AddMessage("s1", "user", "hi")

	// Append just before the TTL expires, then advance almost another TTL.
	s.now = func() time.Time { return base.Add(59 * time.Second) }
	s.AddMessage("s1", "user", "refresh")

	s.now = func() time.Time { return base.Add(110 * time.Second) }
	s.sweep()

	if s.SessionCount() != 1 {
		t.Error("append must refresh lastActive")
	}
}

func TestSweepLoop_RunsPeriodically(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, WithTTL(10*time.Millisecond), WithSweepInterval(20*time.Millisecond))
	s.AddMessage("s1", "user", "hi")

	deadline := time.Now().Add(2 * time.Second)
	for s.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep loop never reaped the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, WithMaxHistory(1000))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AddMessage(fmt.Sprintf("s%d", n%3), "user", "m")
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, id := range []string{"s0", "s1", "s2"} {
		total += len(s.History(id))
	}
	if total != 500 {
		t.Errorf("lost updates under concurrency: total=%d, want 500", total)
	}
}
