package model

// Plan is a tenant's subscription plan.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Limits are the resource ceilings granted by a plan.
type Limits struct {
	MaxUsers    int
	MaxProjects int
}

var planLimits = map[Plan]Limits{
	PlanFree:       {MaxUsers: 5, MaxProjects: 3},
	PlanPro:        {MaxUsers: 25, MaxProjects: 15},
	PlanEnterprise: {MaxUsers: 100, MaxProjects: 100},
}

// ResolvePlan maps a requested plan name to a known plan and its limits.
// Unknown or empty names resolve to PlanFree without error.
func ResolvePlan(name string) (Plan, Limits) {
	p := Plan(name)
	if l, ok := planLimits[p]; ok {
		return p, l
	}
	return PlanFree, planLimits[PlanFree]
}
