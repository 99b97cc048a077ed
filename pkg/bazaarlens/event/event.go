// Package event defines the typed events extracted from The Bazaar's Player.log.
//
// This package is separated from the main bazaarlens package to avoid import cycles
// between pkg/bazaarlens and internal/parser.
package event

import (
	"sort"
	"strings"
)

// Kind represents the kind of log event.
type Kind string

const (
	// Purchased indicates a card, effect or skill instance was acquired.
	Purchased Kind = "purchased"

	// Sold indicates an instance was sold or removed.
	Sold Kind = "sold"

	// BlockOpen marks the start of a "Cards Spawned" resync block.
	BlockOpen Kind = "block_open"

	// BlockClose marks the end of a resync block ("Finished processing").
	BlockClose Kind = "block_close"

	// FieldID carries the instance id of the card being described in a block.
	FieldID Kind = "field_id"

	// FieldOwner carries the owner ("Player", "Opponent", ...) of the current card.
	FieldOwner Kind = "field_owner"

	// FieldSocket carries the socket name of the current card.
	FieldSocket Kind = "field_socket"

	// FieldSection carries the section of the current card and finalizes its placement.
	FieldSection Kind = "field_section"

	// MoveToSocket indicates an item was moved to a socket without a section field.
	MoveToSocket Kind = "move_to_socket"

	// Dealt is a bulk listing of encounter identifiers.
	Dealt Kind = "dealt"
)

// allKinds is the canonical list of all event kinds.
var allKinds = []Kind{
	Purchased, Sold, BlockOpen, BlockClose,
	FieldID, FieldOwner, FieldSocket, FieldSection,
	MoveToSocket, Dealt,
}

// KindNames returns a sorted list of all valid event kind names.
func KindNames() []string {
	names := make([]string, len(allKinds))
	for i, k := range allKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(allKinds))
	for _, k := range allKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Well-known field values.
const (
	OwnerPlayer   = "Player"
	OwnerOpponent = "Opponent"
	SectionHand   = "Hand"
)

// itemPrefix marks instance ids that are items (as opposed to effects or skills).
const itemPrefix = "itm_"

// storageQualifier marks purchase targets that route to the stash.
const storageQualifier = "Storage"

// IsItemInstance reports whether iid names an item instance.
// Effects (eft_) and skills (ste_) are not tracked in hand or stash.
func IsItemInstance(iid string) bool {
	return strings.HasPrefix(iid, itemPrefix)
}

// IsStorageTarget reports whether a purchase target routes to the stash.
func IsStorageTarget(target string) bool {
	return strings.Contains(target, storageQualifier)
}

// Event represents one parsed log line.
type Event struct {
	// Kind is the event kind.
	Kind Kind `json:"kind"`

	// InstanceID is the per-run instance id (Purchased, Sold, FieldID, MoveToSocket).
	InstanceID string `json:"instance_id,omitempty"`

	// TemplateID is the stable template id (Purchased).
	TemplateID string `json:"template_id,omitempty"`

	// Target is the purchase destination, e.g. "Hand_0" or "Storage_3".
	Target string `json:"target,omitempty"`

	// Value is the raw field value (FieldOwner, FieldSocket, FieldSection).
	Value string `json:"value,omitempty"`

	// Socket is the destination socket (MoveToSocket).
	Socket string `json:"socket,omitempty"`

	// IDs lists encounter identifiers in log order (Dealt).
	IDs []string `json:"ids,omitempty"`
}
