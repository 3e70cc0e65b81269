package segmentation

import "voxstory/inventory"

type Strategy string

const (
	StrategyIndividual Strategy = "individual"
	StrategyCategory   Strategy = "category"
	StrategyCombined   Strategy = "combined"
)

type CallType string

const (
	CallItem     CallType = "item"
	CallCategory CallType = "category"
	CallCombined CallType = "combined"
)

// ProviderCall is one external clone-creation request. Items lists
// every item the resulting voice covers; AudioRefs are the unlocked
// samples it trains on.
type ProviderCall struct {
	Type      CallType
	Label     string
	Items     []string
	AudioRefs []string
}

// LockTarget names one (category, item) whose unlocked samples are
// spent once the covering call succeeds.
type LockTarget struct {
	Category inventory.Category
	ItemName string
}

// Decision is the output of one selector run. It is ephemeral: lock
// state moves between runs, so a decision is never reused.
type Decision struct {
	Strategy    Strategy
	TargetItems []string
	Calls       []ProviderCall
	LockingPlan []LockTarget
}

// callPlan returns the lock targets covered by one call.
func (d *Decision) callPlan(call ProviderCall) []LockTarget {
	covered := make(map[string]bool, len(call.Items))
	for _, item := range call.Items {
		covered[item] = true
	}
	var plan []LockTarget
	for _, t := range d.LockingPlan {
		if covered[t.ItemName] {
			plan = append(plan, t)
		}
	}
	return plan
}
