package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind categorizes a settlement outcome for the UI layer.
type Kind string

const (
	KindDepositSuccess     Kind = "DEPOSIT_SUCCESS"
	KindDepositRejected    Kind = "DEPOSIT_REJECTED"
	KindWithdrawalSuccess  Kind = "WITHDRAWAL_SUCCESS"
	KindWithdrawalRejected Kind = "WITHDRAWAL_REJECTED"
	KindSystem             Kind = "SYSTEM"
)

// Notification is the fire-and-forget event emitted after a settlement
// commits. At-least-once delivery; duplicates are tolerable to the UI.
type Notification struct {
	UserID    string         `json:"user_id,omitempty"`
	Kind      Kind           `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Emitter delivers notifications outside the settlement transaction.
// Implementations must never block or fail a committed settlement; errors
// are the implementation's to log.
type Emitter interface {
	// Notify targets a single user.
	Notify(ctx context.Context, n Notification)
	// Broadcast targets the admin review channel (new pending requests).
	Broadcast(ctx context.Context, n Notification)
}

const (
	userChannelPrefix = "notify:user:"
	adminChannel      = "notify:admins"
)

// RedisEmitter publishes notifications on Redis pub/sub channels.
// Delivery is best-effort: publish errors are logged and dropped.
type RedisEmitter struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisEmitter(rdb *redis.Client, log *slog.Logger) *RedisEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &RedisEmitter{rdb: rdb, log: log}
}

func (e *RedisEmitter) Notify(ctx context.Context, n Notification) {
	e.publish(ctx, userChannelPrefix+n.UserID, n)
}

func (e *RedisEmitter) Broadcast(ctx context.Context, n Notification) {
	e.publish(ctx, adminChannel, n)
}

func (e *RedisEmitter) publish(ctx context.Context, channel string, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		e.log.Error("notification marshal failed", "kind", n.Kind, "err", err)
		return
	}
	if err := e.rdb.Publish(ctx, channel, body).Err(); err != nil {
		// Never propagate: the settlement already committed.
		e.log.Error("notification publish failed", "channel", channel, "kind", n.Kind, "err", err)
	}
}

// MemoryEmitter records notifications for tests.
type MemoryEmitter struct {
	mu         sync.Mutex
	sent       []Notification
	broadcasts []Notification
}

func NewMemoryEmitter() *MemoryEmitter { return &MemoryEmitter{} }

func (e *MemoryEmitter) Notify(ctx context.Context, n Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, n)
}

func (e *MemoryEmitter) Broadcast(ctx context.Context, n Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcasts = append(e.broadcasts, n)
}

func (e *MemoryEmitter) Sent() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Notification, len(e.sent))
	copy(out, e.sent)
	return out
}

func (e *MemoryEmitter) Broadcasts() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Notification, len(e.broadcasts))
	copy(out, e.broadcasts)
	return out
}
