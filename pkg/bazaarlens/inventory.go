package bazaarlens

import (
	"slices"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// inventory is the mutable hand/stash/encounter state.
// hand and stash never share an instance id.
type inventory struct {
	hand      map[string]struct{}
	stash     map[string]struct{}
	encounter []string
	sockets   map[string]string // socket name -> section name
}

func newInventory() inventory {
	return inventory{
		hand:    make(map[string]struct{}),
		stash:   make(map[string]struct{}),
		sockets: make(map[string]string),
	}
}

// place puts iid into hand or stash, removing it from the other set.
// Reports whether membership changed.
func (inv *inventory) place(iid string, toHand bool) bool {
	dst, other := inv.stash, inv.hand
	if toHand {
		dst, other = inv.hand, inv.stash
	}
	_, had := dst[iid]
	_, inOther := other[iid]
	dst[iid] = struct{}{}
	delete(other, iid)
	return !had || inOther
}

// remove drops iid from both sets.
func (inv *inventory) remove(iid string) bool {
	_, inHand := inv.hand[iid]
	_, inStash := inv.stash[iid]
	delete(inv.hand, iid)
	delete(inv.stash, iid)
	return inHand || inStash
}

func (inv *inventory) clearHand() bool {
	if len(inv.hand) == 0 {
		return false
	}
	clear(inv.hand)
	return true
}

// addEncounter appends tid unless already present.
func (inv *inventory) addEncounter(tid string) bool {
	if slices.Contains(inv.encounter, tid) {
		return false
	}
	inv.encounter = append(inv.encounter, tid)
	return true
}

// setEncounter replaces the encounter with ids, keeping first occurrences.
func (inv *inventory) setEncounter(ids []string) {
	inv.encounter = inv.encounter[:0]
	for _, id := range ids {
		inv.addEncounter(id)
	}
}

func (inv *inventory) clearEncounter() bool {
	if len(inv.encounter) == 0 {
		return false
	}
	inv.encounter = inv.encounter[:0]
	return true
}

// rememberSocket records which section a socket belongs to.
func (inv *inventory) rememberSocket(socket, section string) {
	if socket != "" {
		inv.sockets[socket] = section
	}
}

// sectionOf returns the remembered section of socket.
func (inv *inventory) sectionOf(socket string) (string, bool) {
	section, ok := inv.sockets[socket]
	return section, ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isHand(section string) bool {
	return section == event.SectionHand
}
