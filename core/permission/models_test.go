package permission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core/user"
)

func TestRequest_Lifecycle(t *testing.T) {
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	pending := Request{ID: "1", Status: StatusPending, RequestedDuration: 30}

	approved, err := pending.Approve("admin-1", 0, now)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, approved.IsActive(now.Add(29*time.Minute)))
	assert.False(t, approved.IsActive(now.Add(30*time.Minute)))
	assert.Equal(t, 10*time.Minute, approved.Remaining(now.Add(20*time.Minute)))
	assert.Zero(t, approved.Remaining(now.Add(time.Hour)))

	_, err = approved.Reject("admin-1", "too late", now)
	assert.ErrorIs(t, err, ErrNotPending)

	rejected, err := pending.Reject("admin-1", "not needed", now)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.False(t, rejected.IsActive(now))

	_, err = rejected.Approve("admin-1", 10, now)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestMine_Active(t *testing.T) {
	now := time.Now()
	soon, later, past := now.Add(time.Minute), now.Add(time.Hour), now.Add(-time.Minute)
	mine := Mine{Requests: []Request{
		{ID: "a", Status: StatusApproved, ExpiresAt: &soon},
		{ID: "b", Status: StatusApproved, ExpiresAt: &later},
		{ID: "c", Status: StatusApproved, ExpiresAt: &past},
		{ID: "d", Status: StatusPending},
	}}
	r, ok := mine.Active(now)
	require.True(t, ok)
	assert.Equal(t, "b", r.ID)

	_, ok = Mine{}.Active(now)
	assert.False(t, ok)
}

func TestCanEdit(t *testing.T) {
	admin := user.User{Role: user.RoleAdmin}
	accountant := user.User{Role: user.RoleAccountant}

	assert.True(t, CanEdit(admin, false))
	assert.False(t, CanEdit(accountant, false))
	assert.True(t, CanEdit(accountant, true))
	assert.False(t, CanEdit(user.User{Role: "guest"}, true))
}

func TestNewRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		nr      NewRequest
		wantErr bool
	}{
		{name: "valid", nr: NewRequest{Reason: "fix a typo", RequestedDuration: 30}},
		{name: "blank reason", nr: NewRequest{Reason: " ", RequestedDuration: 30}, wantErr: true},
		{name: "no duration", nr: NewRequest{Reason: "fix"}, wantErr: true},
		{name: "too long", nr: NewRequest{Reason: "fix", RequestedDuration: 2000}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}
