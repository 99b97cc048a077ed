// Package parser extracts typed events from The Bazaar's Player.log lines.
package parser

import (
	"strings"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/event"
)

// Parse turns one log line into at most one event.
//
// Patterns are tried in a fixed order and the first match wins.
// Returns nil when the line is not of interest; malformed lines that only
// partially match a pattern are treated the same way.
func Parse(line string) *event.Event {
	// Trim CR (Windows CRLF) and indentation of block field lines
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if ev := parsePurchase(line); ev != nil {
		return ev
	}
	if ev := parseSold(line); ev != nil {
		return ev
	}
	if strings.Contains(line, blockOpenMarker) {
		return &event.Event{Kind: event.BlockOpen}
	}
	if strings.Contains(line, blockCloseMarker) {
		return &event.Event{Kind: event.BlockClose}
	}
	// Dealt lines embed "ID: [..]" so they must be checked before field lines
	if strings.Contains(line, dealtMarker) {
		return parseDealt(line)
	}
	if match := moveSocketPattern.FindStringSubmatch(line); match != nil {
		return &event.Event{
			Kind:       event.MoveToSocket,
			InstanceID: match[1],
			Socket:     match[2],
		}
	}
	return parseField(line)
}

// IsRunStart reports whether line marks the beginning of a new run.
func IsRunStart(line string) bool {
	return strings.Contains(line, RunStartMarker)
}

func parsePurchase(line string) *event.Event {
	match := purchasePattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	return &event.Event{
		Kind:       event.Purchased,
		InstanceID: match[1],
		TemplateID: match[2],
		Target:     match[3],
	}
}

func parseSold(line string) *event.Event {
	match := soldPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	return &event.Event{
		Kind:       event.Sold,
		InstanceID: match[1],
	}
}

func parseDealt(line string) *event.Event {
	matches := idPattern.FindAllStringSubmatch(line, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return &event.Event{Kind: event.Dealt, IDs: ids}
}

func parseField(line string) *event.Event {
	if match := idPattern.FindStringSubmatch(line); match != nil {
		return &event.Event{Kind: event.FieldID, InstanceID: match[1]}
	}
	if match := ownerPattern.FindStringSubmatch(line); match != nil {
		return &event.Event{Kind: event.FieldOwner, Value: match[1]}
	}
	if match := socketPattern.FindStringSubmatch(line); match != nil {
		return &event.Event{Kind: event.FieldSocket, Value: match[1]}
	}
	if match := sectionPattern.FindStringSubmatch(line); match != nil {
		return &event.Event{Kind: event.FieldSection, Value: match[1]}
	}
	return nil
}
