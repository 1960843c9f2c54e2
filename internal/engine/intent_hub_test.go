package engine

import (
	"testing"

	"github.com/cheatloop/storefront/internal/domain"
)

func intent(id string) domain.PurchaseIntent {
	return domain.PurchaseIntent{ID: id, ProductID: "p1", Email: "a@example.com"}
}

func TestMergeIdempotentByID(t *testing.T) {
	hub := NewIntentHub()

	fresh := hub.Merge([]domain.PurchaseIntent{intent("i1"), intent("i2")})
	if len(fresh) != 2 {
		t.Fatalf("first merge returned %d, want 2", len(fresh))
	}

	// Re-delivery of the same batch, as happens when the poller and a push
	// channel overlap, must produce nothing new.
	fresh = hub.Merge([]domain.PurchaseIntent{intent("i2"), intent("i1")})
	if len(fresh) != 0 {
		t.Fatalf("re-merge returned %d, want 0", len(fresh))
	}

	fresh = hub.Merge([]domain.PurchaseIntent{intent("i1"), intent("i3")})
	if len(fresh) != 1 || fresh[0].ID != "i3" {
		t.Fatalf("partial merge returned %v, want just i3", fresh)
	}
}

func TestMergeSkipsEmptyIDs(t *testing.T) {
	hub := NewIntentHub()
	if got := hub.Merge([]domain.PurchaseIntent{{}, intent("i1")}); len(got) != 1 {
		t.Fatalf("merge returned %d, want 1", len(got))
	}
}

func TestMergeDuplicatesWithinBatch(t *testing.T) {
	hub := NewIntentHub()
	fresh := hub.Merge([]domain.PurchaseIntent{intent("i1"), intent("i1")})
	if len(fresh) != 1 {
		t.Fatalf("merge returned %d, want 1", len(fresh))
	}
}

func TestSubscribeReceivesOnlyNewIntents(t *testing.T) {
	hub := NewIntentHub()
	hub.Merge([]domain.PurchaseIntent{intent("old")})

	ch := hub.Subscribe("sse-1")
	defer hub.Unsubscribe("sse-1")

	hub.Merge([]domain.PurchaseIntent{intent("old"), intent("new")})

	select {
	case ev := <-ch:
		if ev.Intent.ID != "new" {
			t.Errorf("event for %q, want %q", ev.Intent.ID, "new")
		}
	default:
		t.Fatal("no event delivered")
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected extra event %v", ev)
	default:
	}
}

func TestForgetAllowsResurface(t *testing.T) {
	hub := NewIntentHub()
	hub.Merge([]domain.PurchaseIntent{intent("i1")})
	hub.Forget([]string{"i1"})
	if got := hub.Merge([]domain.PurchaseIntent{intent("i1")}); len(got) != 1 {
		t.Fatalf("merge after forget returned %d, want 1", len(got))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewIntentHub()
	ch := hub.Subscribe("sse-1")
	hub.Unsubscribe("sse-1")
	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
}
