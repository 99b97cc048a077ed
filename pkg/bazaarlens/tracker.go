package bazaarlens

import (
	"slices"

	"github.com/bazaarlens/bazaarlens-go/internal/parser"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// cursor holds the fields of the card currently described inside a
// "Cards Spawned" block. A FieldID line starts a new card and clears it.
type cursor struct {
	id      string
	owner   string
	socket  string
	section string // set once the card has been placed
}

// Tracker reconstructs hand, stash and encounter state from log events.
//
// A Tracker is not safe for concurrent use; the Watcher owns one per session
// and only hands out Snapshot copies.
type Tracker struct {
	instances *InstanceCatalog
	inv       inventory

	inBlock     bool
	handCleared bool
	cur         cursor
}

// NewTracker returns an empty tracker whose instance catalog is seeded
// with templates (usually the result of a full-file scan).
func NewTracker(templates map[string]string) *Tracker {
	return &Tracker{
		instances: NewInstanceCatalog(templates),
		inv:       newInventory(),
	}
}

// Reset clears all inventory and block state and reseeds the instance catalog.
func (t *Tracker) Reset(templates map[string]string) {
	t.instances = NewInstanceCatalog(templates)
	t.inv = newInventory()
	t.inBlock = false
	t.handCleared = false
	t.cur = cursor{}
}

// HandleLine parses line and applies the resulting event.
// It returns true when a snapshot should be published: the state changed
// and no block is being assembled. Closing a block always returns true.
func (t *Tracker) HandleLine(line string) bool {
	ev := parser.Parse(line)
	if ev == nil {
		return false
	}
	changed := t.Apply(ev)
	return changed && !t.inBlock
}

// Apply mutates the state according to ev and reports whether it changed.
func (t *Tracker) Apply(ev *event.Event) bool {
	switch ev.Kind {
	case event.Purchased:
		return t.purchased(ev)
	case event.Sold:
		if t.inBlock || !event.IsItemInstance(ev.InstanceID) {
			return false
		}
		return t.inv.remove(ev.InstanceID)
	case event.BlockOpen:
		return t.openBlock()
	case event.BlockClose:
		if !t.inBlock {
			return false
		}
		t.inBlock = false
		t.handCleared = false
		t.cur = cursor{}
		return true
	case event.FieldID:
		if t.inBlock {
			t.cur = cursor{id: ev.InstanceID}
		}
		return false
	case event.FieldOwner:
		if t.inBlock {
			t.cur.owner = ev.Value
		}
		return false
	case event.FieldSocket:
		if !t.inBlock {
			return false
		}
		t.cur.socket = ev.Value
		if t.cur.section != "" && t.cur.owner == event.OwnerPlayer {
			t.inv.rememberSocket(t.cur.socket, t.cur.section)
		}
		return false
	case event.FieldSection:
		if !t.inBlock {
			return false
		}
		return t.finalize(ev.Value)
	case event.MoveToSocket:
		if !event.IsItemInstance(ev.InstanceID) {
			return false
		}
		section, ok := t.inv.sectionOf(ev.Socket)
		if !ok {
			return false
		}
		return t.inv.place(ev.InstanceID, isHand(section))
	case event.Dealt:
		prev := slices.Clone(t.inv.encounter)
		t.inv.setEncounter(ev.IDs)
		return !slices.Equal(prev, t.inv.encounter)
	}
	return false
}

func (t *Tracker) purchased(ev *event.Event) bool {
	t.instances.Record(ev.InstanceID, ev.TemplateID)
	if !event.IsItemInstance(ev.InstanceID) {
		return false
	}
	if event.IsStorageTarget(ev.Target) {
		return t.inv.place(ev.InstanceID, false)
	}
	if t.inBlock {
		// the block's own section fields place it
		return false
	}
	return t.inv.place(ev.InstanceID, true)
}

func (t *Tracker) openBlock() bool {
	if t.inBlock {
		return false
	}
	t.inBlock = true
	t.handCleared = false
	t.cur = cursor{}
	return t.inv.clearEncounter()
}

// finalize places the card under the cursor into section.
func (t *Tracker) finalize(section string) bool {
	if t.cur.id == "" {
		return false
	}
	t.cur.section = section

	switch t.cur.owner {
	case event.OwnerPlayer:
		if !event.IsItemInstance(t.cur.id) {
			return false
		}
		changed := false
		toHand := isHand(section)
		if toHand && !t.handCleared {
			t.handCleared = true
			changed = t.inv.clearHand()
		}
		if t.inv.place(t.cur.id, toHand) {
			changed = true
		}
		t.inv.rememberSocket(t.cur.socket, section)
		return changed
	case event.OwnerOpponent:
		return t.inv.addEncounter(t.instances.Resolve(t.cur.id))
	}
	return false
}

// InBlock reports whether a "Cards Spawned" block is being assembled.
func (t *Tracker) InBlock() bool {
	return t.inBlock
}

// Hand returns the instance ids in hand, sorted.
func (t *Tracker) Hand() []string {
	return sortedKeys(t.inv.hand)
}

// Stash returns the instance ids in the stash, sorted.
func (t *Tracker) Stash() []string {
	return sortedKeys(t.inv.stash)
}

// Encounter returns the encounter template ids in discovery order.
func (t *Tracker) Encounter() []string {
	return slices.Clone(t.inv.encounter)
}

// Instances returns the tracker's instance catalog.
func (t *Tracker) Instances() *InstanceCatalog {
	return t.instances
}

// SocketSection returns the section remembered for socket.
func (t *Tracker) SocketSection(socket string) (string, bool) {
	return t.inv.sectionOf(socket)
}
