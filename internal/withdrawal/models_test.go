package withdrawal

import (
	"errors"
	"testing"
	"time"
)

func pending() Request {
	return Request{
		ID:              "wd1",
		UserID:          "u1",
		AmountMinor:     300,
		Currency:        "BDT",
		PaymentMethod:   "BKASH",
		RecipientNumber: "017000",
		Status:          StatusPending,
		TransactionID:   "txn-res",
	}
}

func TestRequest_ApproveOnce(t *testing.T) {
	r := pending()
	now := time.Unix(1700000000, 0).UTC()

	if err := r.Approve("admin-1", "PAYOUT-1", "", now); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Status != StatusApproved || r.PayoutRef != "PAYOUT-1" {
		t.Fatalf("unexpected state: %+v", r)
	}

	if err := r.Approve("admin-2", "PAYOUT-2", "", now); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if r.PayoutRef != "PAYOUT-1" {
		t.Fatalf("second approve must not mutate")
	}
}

func TestRequest_RejectRequiresReason(t *testing.T) {
	r := pending()
	now := time.Unix(1700000000, 0).UTC()

	if err := r.Reject("admin-1", "", "", now); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	if err := r.Reject("admin-1", "account name mismatch", "", now); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := r.Reject("admin-2", "again", "", now); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}
