package segmentation

import (
	"github.com/sirupsen/logrus"

	"voxstory/inventory"
)

const (
	// DefaultIndividualThreshold is how many unlocked samples one
	// item needs for its own dedicated clone.
	DefaultIndividualThreshold = 6
	// DefaultCategoryThreshold is the unlocked sum a whole category
	// needs for a shared clone.
	DefaultCategoryThreshold = 3
)

// Selector picks the cheapest clone strategy that still gives good
// fidelity. Tiers are evaluated in strict priority order: dedicated
// per-item clones when an item is dense enough, per-category clones
// when only the aggregate is, and a single combined clone otherwise
// so a brand-new user always gets some personalized voice. Thresholds
// count unlocked samples only; spent samples never bill twice.
type Selector struct {
	IndividualThreshold int
	CategoryThreshold   int
}

func NewSelector() *Selector {
	return &Selector{
		IndividualThreshold: DefaultIndividualThreshold,
		CategoryThreshold:   DefaultCategoryThreshold,
	}
}

// SelectStrategy evaluates one grouped snapshot. With zero unlocked
// samples anywhere it returns a combined decision with no calls and
// no locking plan.
func (s *Selector) SelectStrategy(groups []inventory.ItemGroup) Decision {
	if d, ok := s.individualTier(groups); ok {
		return d
	}
	if d, ok := s.categoryTier(groups); ok {
		return d
	}
	return s.combinedTier(groups)
}

func (s *Selector) individualTier(groups []inventory.ItemGroup) (Decision, bool) {
	d := Decision{Strategy: StrategyIndividual}
	for i := range groups {
		g := &groups[i]
		if g.UnlockedCount < s.IndividualThreshold {
			continue
		}
		d.TargetItems = append(d.TargetItems, g.ItemName)
		d.Calls = append(d.Calls, ProviderCall{
			Type:      CallItem,
			Items:     []string{g.ItemName},
			AudioRefs: g.UnlockedRefs(),
		})
		d.LockingPlan = append(d.LockingPlan, LockTarget{
			Category: g.Category,
			ItemName: g.ItemName,
		})
	}
	if len(d.Calls) == 0 {
		return Decision{}, false
	}

	logrus.WithField("items", d.TargetItems).Debugln("individual tier selected")
	return d, true
}

func (s *Selector) categoryTier(groups []inventory.ItemGroup) (Decision, bool) {
	d := Decision{Strategy: StrategyCategory}
	byCat := inventory.ByCategory(groups)
	for _, cat := range []inventory.Category{inventory.CategoryEmotion, inventory.CategorySound, inventory.CategoryModulation} {
		catGroups := byCat[cat]
		sum := 0
		for i := range catGroups {
			sum += catGroups[i].UnlockedCount
		}
		if sum < s.CategoryThreshold {
			continue
		}

		call := ProviderCall{Type: CallCategory}
		for i := range catGroups {
			g := &catGroups[i]
			if g.UnlockedCount == 0 {
				continue
			}
			call.Items = append(call.Items, g.ItemName)
			call.AudioRefs = append(call.AudioRefs, g.UnlockedRefs()...)
			d.TargetItems = append(d.TargetItems, g.ItemName)
			d.LockingPlan = append(d.LockingPlan, LockTarget{
				Category: cat,
				ItemName: g.ItemName,
			})
		}
		d.Calls = append(d.Calls, call)
	}
	if len(d.Calls) == 0 {
		return Decision{}, false
	}

	logrus.WithField("items", d.TargetItems).Debugln("category tier selected")
	return d, true
}

func (s *Selector) combinedTier(groups []inventory.ItemGroup) Decision {
	d := Decision{Strategy: StrategyCombined}

	call := ProviderCall{Type: CallCombined}
	for i := range groups {
		g := &groups[i]
		if g.UnlockedCount == 0 {
			continue
		}
		call.Items = append(call.Items, g.ItemName)
		call.AudioRefs = append(call.AudioRefs, g.UnlockedRefs()...)
		d.TargetItems = append(d.TargetItems, g.ItemName)
		d.LockingPlan = append(d.LockingPlan, LockTarget{
			Category: g.Category,
			ItemName: g.ItemName,
		})
	}

	// zero unlocked samples anywhere: a no-op decision
	if len(call.AudioRefs) == 0 {
		return d
	}

	d.Calls = append(d.Calls, call)
	return d
}
