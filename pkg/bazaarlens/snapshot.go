package bazaarlens

import (
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

// Snapshot is the published view of the player's inventory.
// Hand and Stash are ordered by instance id and are never nil.
type Snapshot struct {
	Hand      []catalog.Item    `json:"hand"`
	Stash     []catalog.Item    `json:"stash"`
	Encounter []catalog.Monster `json:"encounter,omitempty"`
}

// EmptySnapshot returns a snapshot with no items.
func EmptySnapshot() Snapshot {
	return Snapshot{Hand: []catalog.Item{}, Stash: []catalog.Item{}}
}

// Resolver turns tracker state into display records.
// A nil catalog passes template ids through as bare records.
type Resolver struct {
	Items    *catalog.Items
	Monsters *catalog.Monsters
}

// Unresolved lists, per snapshot section, the template ids that a non-nil
// catalog had no record for.
type Unresolved struct {
	Hand      []string
	Stash     []string
	Encounter []string
}

// Snapshot builds a snapshot of t. Entries a non-nil catalog has no record
// for are omitted from the snapshot and reported in Unresolved.
func (r Resolver) Snapshot(t *Tracker) (Snapshot, Unresolved) {
	var missing Unresolved
	snap := EmptySnapshot()

	resolveItems := func(iids []string, missing *[]string) []catalog.Item {
		out := make([]catalog.Item, 0, len(iids))
		for _, iid := range iids {
			tid := t.instances.Resolve(iid)
			if r.Items == nil {
				out = append(out, catalog.Item{ID: tid})
				continue
			}
			it, ok := r.Items.Lookup(tid)
			if !ok {
				*missing = append(*missing, tid)
				continue
			}
			out = append(out, it)
		}
		return out
	}
	snap.Hand = resolveItems(t.Hand(), &missing.Hand)
	snap.Stash = resolveItems(t.Stash(), &missing.Stash)

	for _, tid := range t.inv.encounter {
		if r.Monsters == nil {
			snap.Encounter = append(snap.Encounter, catalog.Monster{ID: tid})
			continue
		}
		m, ok := r.Monsters.Lookup(tid)
		if !ok {
			missing.Encounter = append(missing.Encounter, tid)
			continue
		}
		snap.Encounter = append(snap.Encounter, m)
	}

	return snap, missing
}
