package permission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var ErrNotPending = errors.New("only pending requests can be approved or rejected")

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown permission status %q", s)
}

// Request is an accountant's request for temporary edit rights.
type Request struct {
	ID                string     `json:"id"`
	RequestedBy       string     `json:"requestedBy"`
	RequestedByName   string     `json:"requestedByName,omitempty"`
	Reason            string     `json:"reason"`
	RequestedDuration int        `json:"requestedDuration"` // minutes
	Status            Status     `json:"status"`
	ApprovedBy        string     `json:"approvedBy,omitempty"`
	RejectionReason   string     `json:"rejectionReason,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// IsActive reports whether the request grants edit rights at now.
func (r Request) IsActive(now time.Time) bool {
	return r.Status == StatusApproved && r.ExpiresAt != nil && now.Before(*r.ExpiresAt)
}

// Remaining is the time left before an active request expires; 0 otherwise.
func (r Request) Remaining(now time.Time) time.Duration {
	if !r.IsActive(now) {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

// Approve moves a pending request to approved; it stays active for `minutes` from now
// (the requested duration when minutes is 0).
func (r Request) Approve(by string, minutes int, now time.Time) (Request, error) {
	if r.Status != StatusPending {
		return r, ErrNotPending
	}
	if minutes <= 0 {
		minutes = r.RequestedDuration
	}
	exp := now.Add(time.Duration(minutes) * time.Minute)
	r.Status = StatusApproved
	r.ApprovedBy = by
	r.ExpiresAt = &exp
	return r, nil
}

// Reject moves a pending request to rejected.
func (r Request) Reject(by, reason string, now time.Time) (Request, error) {
	if r.Status != StatusPending {
		return r, ErrNotPending
	}
	r.Status = StatusRejected
	r.ApprovedBy = by
	r.RejectionReason = reason
	return r, nil
}

// Mine is the caller's requests and whether one of them is active.
type Mine struct {
	Requests            []Request `json:"requests"`
	HasActivePermission bool      `json:"hasActivePermission"`
}

// Active returns the active request with the latest expiry.
func (m Mine) Active(now time.Time) (Request, bool) {
	var (
		best Request
		ok   bool
	)
	for _, r := range m.Requests {
		if r.IsActive(now) && (!ok || r.ExpiresAt.After(*best.ExpiresAt)) {
			best, ok = r, true
		}
	}
	return best, ok
}

type NewRequest struct {
	Reason            string `json:"reason" validate:"notblank"`
	RequestedDuration int    `json:"requestedDuration" validate:"gt=0,lte=1440"` // minutes
}

func (nr *NewRequest) Validate() error {
	nr.Reason = core.CleanString(nr.Reason)
	return core.Validate.Struct(nr)
}

type Decision struct {
	Minutes int    `json:"minutes" validate:"gte=0,lte=1440"`
	Reason  string `json:"reason"`
}

// CanEdit decides whether edit controls are enabled: admins always, accountants only while
// the backend reports an active permission. The backend still rejects unauthorized edits.
func CanEdit(u user.User, hasActivePermission bool) bool {
	switch {
	case u.IsAdmin():
		return true
	case u.IsAccountant():
		return hasActivePermission
	}
	return false
}
