package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType tags the class of admin action being recorded.
type EventType string

const (
	TypeAdminReview EventType = "admin_review"
	TypeBetRefund   EventType = "bet_refund"
)

// Event is one admin action in the audit trail. Events are append-only and
// advisory: the money truth lives in the ledger, this answers "who decided".
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	ActorUserID string `json:"actor_user_id" db:"actor_user_id"`
	ActorRole   string `json:"actor_role" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	// At most one of RequestID/BetID is set, naming the reviewed object.
	RequestID string `json:"request_id,omitempty" db:"request_id"`
	BetID     string `json:"bet_id,omitempty" db:"bet_id"`

	Message  string `json:"message,omitempty" db:"message"`
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	Insert(ctx context.Context, e Event) error
	ListByActor(ctx context.Context, actorUserID string, limit int) ([]Event, error)
}

// Service records audit events best-effort. A failed insert is logged and
// swallowed; it must never fail the settlement that triggered it.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

// Record fills in the id and timestamp and persists the event.
func (s *Service) Record(ctx context.Context, e Event) {
	if s == nil || s.repo == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.log.Error("audit insert failed", "type", e.Type, "actor", e.ActorUserID, "err", err)
	}
}

// MemoryRepo keeps events in process, for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) ListByActor(ctx context.Context, actorUserID string, limit int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []Event
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].ActorUserID == actorUserID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

// Events returns everything recorded, oldest first.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
