package inventory

import "sort"

// ItemGroup is every recording an owner has for one (category, item)
// pair. Groups are recomputed from a fresh recording snapshot on every
// segmentation run; lock counts are only meaningful for that snapshot.
type ItemGroup struct {
	Category      Category
	ItemName      string
	Recordings    []Recording
	SampleCount   int
	LockedCount   int
	UnlockedCount int
}

// UnlockedRefs returns the audio refs of the not-yet-consumed samples,
// in recording order.
func (g *ItemGroup) UnlockedRefs() []string {
	refs := make([]string, 0, g.UnlockedCount)
	for _, r := range g.Recordings {
		if !r.Locked {
			refs = append(refs, r.AudioRef)
		}
	}
	return refs
}

// UnlockedIDs returns the ids of the not-yet-consumed samples.
func (g *ItemGroup) UnlockedIDs() []string {
	ids := make([]string, 0, g.UnlockedCount)
	for _, r := range g.Recordings {
		if !r.Locked {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// GroupByItem groups a recording snapshot by (category, item name).
// Duplicate uploads for the same item all count. The result is sorted
// by category then item name so callers iterate deterministically.
func GroupByItem(recordings []Recording) []ItemGroup {
	byKey := make(map[[2]string]*ItemGroup)
	for _, r := range recordings {
		key := [2]string{string(r.Category), r.ItemName}
		g, ok := byKey[key]
		if !ok {
			g = &ItemGroup{Category: r.Category, ItemName: r.ItemName}
			byKey[key] = g
		}
		g.Recordings = append(g.Recordings, r)
		g.SampleCount++
		if r.Locked {
			g.LockedCount++
		} else {
			g.UnlockedCount++
		}
	}

	groups := make([]ItemGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Category != groups[j].Category {
			return groups[i].Category < groups[j].Category
		}
		return groups[i].ItemName < groups[j].ItemName
	})
	return groups
}

// ByCategory splits groups per category, preserving order.
func ByCategory(groups []ItemGroup) map[Category][]ItemGroup {
	out := make(map[Category][]ItemGroup)
	for _, g := range groups {
		out[g.Category] = append(out[g.Category], g)
	}
	return out
}
