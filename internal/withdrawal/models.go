package withdrawal

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyReviewed rejects a second decision on the same request.
	ErrAlreadyReviewed = errors.New("withdrawal request already reviewed")

	ErrReasonRequired = errors.New("rejection reason required")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is a user's ask to pay out part of their balance. Submission
// reserves the amount (balance -> locked) so it cannot be wagered while the
// request is pending; resolution releases the reservation exactly once.
type Request struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	Currency    string `json:"currency" db:"currency"`

	PaymentMethod   string `json:"payment_method" db:"payment_method"`
	RecipientNumber string `json:"recipient_number" db:"recipient_number"`

	Status Status `json:"status" db:"status"`

	ReviewedBy      string     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	RejectionReason string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AdminNotes      string     `json:"admin_notes,omitempty" db:"admin_notes"`

	// PayoutRef is the provider reference the admin fills on approval.
	PayoutRef string `json:"payout_ref,omitempty" db:"payout_ref"`

	// TransactionID references the PENDING WITHDRAWAL ledger entry created
	// at submission (the reservation debit); it is finalized on review.
	TransactionID string `json:"transaction_id,omitempty" db:"transaction_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Approve transitions PENDING -> APPROVED.
func (r *Request) Approve(reviewerID, payoutRef, notes string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	r.Status = StatusApproved
	r.ReviewedBy = reviewerID
	r.ReviewedAt = &now
	r.PayoutRef = payoutRef
	r.AdminNotes = notes
	r.UpdatedAt = now
	return nil
}

// Reject transitions PENDING -> REJECTED. A reason is mandatory; the caller
// must release the reservation in the same transaction.
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
