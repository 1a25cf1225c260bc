package deposit

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyReviewed rejects a second decision on the same request.
	// Concurrent reviewers race on the row lock; the loser gets this.
	ErrAlreadyReviewed = errors.New("deposit request already reviewed")

	// ErrDuplicateProviderRef rejects a re-submitted provider payment
	// reference; references are globally unique across all requests.
	ErrDuplicateProviderRef = errors.New("duplicate provider reference")

	// ErrTooManyPending enforces the per-user cap on PENDING requests.
	ErrTooManyPending = errors.New("too many pending deposit requests")

	ErrReasonRequired = errors.New("rejection reason required")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is a user's claim that money was sent to the platform through an
// external payment provider. The wallet is untouched until an admin
// approves; PENDING -> APPROVED|REJECTED happens exactly once.
type Request struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	Currency    string `json:"currency" db:"currency"`

	PaymentMethod string `json:"payment_method" db:"payment_method"`
	// ProviderRef is the payment provider's transaction id; globally unique.
	ProviderRef  string `json:"provider_ref" db:"provider_ref"`
	SenderNumber string `json:"sender_number" db:"sender_number"`
	// ProofImageURL is opaque evidence; never interpreted.
	ProofImageURL string `json:"proof_image_url,omitempty" db:"proof_image_url"`

	Status Status `json:"status" db:"status"`

	ReviewedBy      string     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	RejectionReason string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AdminNotes      string     `json:"admin_notes,omitempty" db:"admin_notes"`

	// TransactionID references the ledger entry created on approval.
	TransactionID string `json:"transaction_id,omitempty" db:"transaction_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Approve transitions PENDING -> APPROVED. The caller supplies the ledger
// entry id created in the same transaction.
func (r *Request) Approve(reviewerID, transactionID, notes string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	r.Status = StatusApproved
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	r.AdminNotes = notes
	r.TransactionID = transactionID
	r.UpdatedAt = now
	return nil
}

// Reject transitions PENDING -> REJECTED. A reason is mandatory.
func (r *Request) Reject(reviewerID, reason, notes string, now time.Time) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if r.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	r.Status = StatusRejected
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	r.RejectionReason = reason
	r.AdminNotes = notes
	r.UpdatedAt = now
	return nil
}
