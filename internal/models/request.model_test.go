package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name          string
		current       RequestStatus
		next          RequestStatus
		adminOverride bool
		expected      bool
	}{
		{
			name:    "pending to in-progress",
			current: StatusPending,
			next:    StatusInProgress,
			expected: true,
		},
		{
			name:    "pending to resolved",
			current: StatusPending,
			next:    StatusResolved,
			expected: true,
		},
		{
			name:    "in-progress to resolved",
			current: StatusInProgress,
			next:    StatusResolved,
			expected: true,
		},
		{
			name:    "resolved back to pending without override",
			current: StatusResolved,
			next:    StatusPending,
			expected: false,
		},
		{
			name:          "resolved back to pending with admin override",
			current:       StatusResolved,
			next:          StatusPending,
			adminOverride: true,
			expected:      true,
		},
		{
			name:    "in-progress back to pending without override",
			current: StatusInProgress,
			next:    StatusPending,
			expected: false,
		},
		{
			name:    "same status is allowed",
			current: StatusInProgress,
			next:    StatusInProgress,
			expected: true,
		},
		{
			name:    "unknown target status",
			current: StatusPending,
			next:    RequestStatus("archived"),
			expected: false,
		},
		{
			name:          "unknown target status even with override",
			current:       StatusPending,
			next:          RequestStatus("archived"),
			adminOverride: true,
			expected:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &Request{Status: tt.current}
			assert.Equal(t, tt.expected, request.CanTransitionTo(tt.next, tt.adminOverride))
		})
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusInProgress))
	assert.True(t, ValidStatus(StatusResolved))
	assert.False(t, ValidStatus(RequestStatus("closed")))
	assert.False(t, ValidStatus(RequestStatus("")))
}

func TestValidUrgency(t *testing.T) {
	assert.True(t, ValidUrgency(UrgencyLow))
	assert.True(t, ValidUrgency(UrgencyCritical))
	assert.False(t, ValidUrgency(RequestUrgency("urgent")))
	assert.False(t, ValidUrgency(RequestUrgency("")))
}

func TestUserRoleHelpers(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	tech := &User{Role: RoleTechnician}
	submitter := &User{Role: RoleSubmitter}

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsTechnician())
	assert.True(t, tech.IsTechnician())
	assert.False(t, tech.IsAdmin())
	assert.False(t, submitter.IsAdmin())
	assert.False(t, submitter.IsTechnician())
}

func TestUserToProfileOmitsPasswordHash(t *testing.T) {
	user := &User{
		Name:         "Dana Ortiz",
		Email:        "dana@example.com",
		Role:         RoleTechnician,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		IsActive:     true,
	}

	profile := user.ToProfile()

	assert.Equal(t, user.Name, profile.Name)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, user.Role, profile.Role)
}
