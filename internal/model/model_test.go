package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlan(t *testing.T) {
	tests := []struct {
		in       string
		wantPlan Plan
		want     Limits
	}{
		{in: "free", wantPlan: PlanFree, want: Limits{MaxUsers: 5, MaxProjects: 3}},
		{in: "pro", wantPlan: PlanPro, want: Limits{MaxUsers: 25, MaxProjects: 15}},
		{in: "enterprise", wantPlan: PlanEnterprise, want: Limits{MaxUsers: 100, MaxProjects: 100}},
		{in: "", wantPlan: PlanFree, want: Limits{MaxUsers: 5, MaxProjects: 3}},
		{in: "platinum", wantPlan: PlanFree, want: Limits{MaxUsers: 5, MaxProjects: 3}},
		{in: "PRO", wantPlan: PlanFree, want: Limits{MaxUsers: 5, MaxProjects: 3}},
	}
	for _, tt := range tests {
		p, l := ResolvePlan(tt.in)
		assert.Equal(t, tt.wantPlan, p, tt.in)
		assert.Equal(t, tt.want, l, tt.in)
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"tenant_admin", "user", "super_admin"} {
		r, ok := ParseRole(s)
		assert.True(t, ok, s)
		assert.Equal(t, Role(s), r)
	}
	_, ok := ParseRole("owner")
	assert.False(t, ok)
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusBlocked.Valid())
	assert.False(t, TaskStatus("archived").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, TaskPriority("urgent").Valid())
}
