package notify

import (
	"context"
	"testing"
	"time"
)

func TestMemoryEmitter_RecordsNotifications(t *testing.T) {
	e := NewMemoryEmitter()
	now := time.Unix(1700000000, 0).UTC()

	e.Notify(context.Background(), Notification{UserID: "u1", Kind: KindDepositSuccess, CreatedAt: now})
	e.Broadcast(context.Background(), Notification{Kind: KindSystem, CreatedAt: now})

	if got := e.Sent(); len(got) != 1 || got[0].Kind != KindDepositSuccess {
		t.Fatalf("unexpected sent: %+v", got)
	}
	if got := e.Broadcasts(); len(got) != 1 || got[0].Kind != KindSystem {
		t.Fatalf("unexpected broadcasts: %+v", got)
	}
}
