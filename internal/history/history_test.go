package history

import (
	"fmt"
	"sync"
	"testing"
)

func TestHistoryAddGetClear(t *testing.T) {
	h := NewManager(5)
	userA := int64(1)
	userB := int64(2)

	h.Add(userA, "hello", "hi")
	h.Add(userB, "foo", "bar")

	msgsA := h.Get(userA)
	msgsB := h.Get(userB)

	if len(msgsA) != 1 || len(msgsB) != 1 {
		t.Fatalf("unexpected lengths: A=%d B=%d", len(msgsA), len(msgsB))
	}
	if msgsA[0] != (Interaction{UserInput: "hello", BotOutput: "hi"}) {
		t.Fatalf("unexpected A[0]: %+v", msgsA[0])
	}
	if msgsB[0] != (Interaction{UserInput: "foo", BotOutput: "bar"}) {
		t.Fatalf("unexpected B[0]: %+v", msgsB[0])
	}

	// Ensure copy semantics (modifying returned slice does not affect internal state)
	msgsA[0] = Interaction{UserInput: "mutated"}
	if h.Get(userA)[0].UserInput != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}

	h.Clear(userA)
	if len(h.Get(userA)) != 0 {
		t.Fatalf("clear did not empty user A")
	}
	if len(h.Get(userB)) != 1 {
		t.Fatalf("clear should not affect other users")
	}
}

func TestHistoryUnknownUserIsEmpty(t *testing.T) {
	h := NewManager(3)
	if got := h.Get(404); len(got) != 0 {
		t.Fatalf("want empty history, got %+v", got)
	}
	if h.Len(404) != 0 {
		t.Fatalf("want zero length for unknown user")
	}
}

func TestHistoryKeepsLastN(t *testing.T) {
	const n = 4
	for k := 1; k <= 7; k++ {
		h := NewManager(n)
		total := n + k
		for i := 0; i < total; i++ {
			h.Add(9, fmt.Sprintf("in%d", i), fmt.Sprintf("out%d", i))
		}
		got := h.Get(9)
		if len(got) != n {
			t.Fatalf("k=%d: want %d items, got %d", k, n, len(got))
		}
		for i, it := range got {
			idx := total - n + i
			want := Interaction{UserInput: fmt.Sprintf("in%d", idx), BotOutput: fmt.Sprintf("out%d", idx)}
			if it != want {
				t.Fatalf("k=%d: item %d = %+v, want %+v", k, i, it, want)
			}
		}
	}
}

func TestHistoryEvictionScenario(t *testing.T) {
	h := NewManager(2)
	h.Add(7, "a", "A")
	h.Add(7, "b", "B")
	h.Add(7, "c", "C")

	got := h.Get(7)
	want := []Interaction{{"b", "B"}, {"c", "C"}}
	if len(got) != len(want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %+v, got %+v", want, got)
		}
	}
}

func TestHistoryClearIsIdempotent(t *testing.T) {
	h := NewManager(3)
	h.Clear(1) // never seen
	if len(h.Get(1)) != 0 {
		t.Fatalf("want empty after clearing unknown user")
	}

	h.Add(1, "x", "y")
	h.Clear(1)
	h.Clear(1)
	if len(h.Get(1)) != 0 {
		t.Fatalf("want empty after double clear")
	}

	// history is recreated lazily after a clear
	h.Add(1, "again", "ok")
	if got := h.Get(1); len(got) != 1 || got[0].UserInput != "again" {
		t.Fatalf("unexpected history after re-add: %+v", got)
	}
}

func TestNewManagerCoercesSize(t *testing.T) {
	h := NewManager(0)
	if h.MaxSize() != 1 {
		t.Fatalf("want max size 1, got %d", h.MaxSize())
	}
	h.Add(1, "a", "A")
	h.Add(1, "b", "B")
	if got := h.Get(1); len(got) != 1 || got[0].UserInput != "b" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestHistoryConcurrentUsers(t *testing.T) {
	h := NewManager(50)
	var wg sync.WaitGroup
	for u := int64(0); u < 20; u++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				h.Add(uid, fmt.Sprintf("%d-%d", uid, i), "ok")
				_ = h.Get(uid)
			}
		}(u)
	}
	wg.Wait()

	if len(h.Users()) != 20 {
		t.Fatalf("want 20 users, got %d", len(h.Users()))
	}
	for u := int64(0); u < 20; u++ {
		got := h.Get(u)
		if len(got) != 30 {
			t.Fatalf("user %d: want 30 items, got %d", u, len(got))
		}
		for i, it := range got {
			if it.UserInput != fmt.Sprintf("%d-%d", u, i) {
				t.Fatalf("user %d: out of order at %d: %q", u, i, it.UserInput)
			}
		}
	}
}
