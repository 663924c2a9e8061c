package trip

import (
	"slices"

	"triptailor-backend/internal/domain"

	"github.com/samber/lo"
)

// RemovedIDs returns the ids the oracle marked "remove" that are present in
// existing. Decisions for unknown ids are ignored.
func RemovedIDs(existing []string, decisions []domain.ItemDecision) []string {
	marked := lo.FilterMap(decisions, func(d domain.ItemDecision, _ int) (string, bool) {
		return d.ID, d.Decision == domain.DecisionRemove
	})
	return lo.Intersect(existing, lo.Uniq(marked))
}

// ApplyDecisions drops removed ids from existing and unions the survivors
// with candidates. Order is existing first, then new candidates.
func ApplyDecisions(existing []string, decisions []domain.ItemDecision, candidates []string) []string {
	kept, _ := lo.Difference(existing, RemovedIDs(existing, decisions))
	return lo.Uniq(lo.Compact(append(kept, candidates...)))
}

// ApplyRemap renames ids and the status table in one pass. Only statuses of
// ids in the set are carried, so a mapping for an absent id is a no-op even
// when the status table still remembers it. The renamed id inherits the old
// status; a booked status already held by the target wins.
func ApplyRemap(ids []string, statuses map[string]domain.Status, remap map[string]string) ([]string, map[string]domain.Status) {
	rename := func(id string) string {
		if to, ok := remap[id]; ok && to != "" {
			return to
		}
		return id
	}
	members := lo.Keyify(ids)

	outStatuses := make(map[string]domain.Status, len(ids))
	for _, id := range ids {
		if st, ok := statuses[id]; ok && rename(id) == id {
			outStatuses[id] = st
		}
	}
	// Renames apply in id order; a booked status already on the target stays.
	moved := lo.Filter(lo.Keys(statuses), func(id string, _ int) bool {
		_, in := members[id]
		return in && rename(id) != id
	})
	slices.Sort(moved)
	for _, id := range moved {
		to := rename(id)
		if cur, ok := outStatuses[to]; ok && cur.IsBooked() {
			continue
		}
		outStatuses[to] = statuses[id]
	}

	outIDs := lo.Uniq(lo.Map(ids, func(id string, _ int) string { return rename(id) }))
	return outIDs, outStatuses
}

// RemapOverrides moves override keys through remap so an override issued
// for the tentative id follows it to its booked id. An override addressed to
// the new id directly takes precedence.
func RemapOverrides(overrides map[string]domain.Status, remap map[string]string) map[string]domain.Status {
	out := make(map[string]domain.Status, len(overrides))
	for id, st := range overrides {
		if to, ok := remap[id]; ok && to != "" && to != id {
			if _, direct := overrides[to]; direct {
				continue
			}
			out[to] = st
			continue
		}
		out[id] = st
	}
	return out
}

// resurrectBooked returns the removed ids that must stay in the set because a
// booked override targets them, either directly or through remap.
func resurrectBooked(removed []string, overrides map[string]domain.Status, remap map[string]string) []string {
	return lo.Filter(removed, func(id string, _ int) bool {
		if overrides[id].IsBooked() {
			return true
		}
		to, ok := remap[id]
		return ok && overrides[to].IsBooked()
	})
}

// ResolveStatus picks the status of one surviving id. The second return value
// reports whether the raw document is needed to decide.
func ResolveStatus(carried domain.Status, hasCarried bool, override domain.Status, hasOverride bool) (domain.Status, bool) {
	if !hasCarried {
		carried = domain.StatusAvailable
	}
	if carried.IsBooked() {
		return domain.StatusBooked, false
	}
	if hasOverride {
		return override, false
	}
	return carried, carried.Inferable()
}
