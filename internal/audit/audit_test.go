package audit

import (
	"context"
	"testing"
)

func TestService_RecordFillsIdentifiers(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil)

	svc.Record(context.Background(), Event{
		Type:        TypeAdminReview,
		ActorUserID: "admin-1",
		ActorRole:   "admin",
		RequestID:   "dep-1",
	})

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" || events[0].CreatedAt.IsZero() {
		t.Fatalf("id and timestamp must be filled: %+v", events[0])
	}
}

func TestMemoryRepo_ListByActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	svc.Record(ctx, Event{Type: TypeAdminReview, ActorUserID: "a1", RequestID: "r1"})
	svc.Record(ctx, Event{Type: TypeBetRefund, ActorUserID: "a2", BetID: "b1"})
	svc.Record(ctx, Event{Type: TypeAdminReview, ActorUserID: "a1", RequestID: "r2"})

	got, err := repo.ListByActor(ctx, "a1", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].RequestID != "r2" {
		t.Fatalf("expected newest-first a1 events, got %+v", got)
	}
}
