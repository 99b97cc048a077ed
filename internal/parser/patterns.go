package parser

import "regexp"

// RunStartMarker is logged once when a new run begins.
// Only lines after the last occurrence belong to the current run.
const RunStartMarker = "State changed from [null] to [StartRunAppState]"

// Literal markers matched with strings.Contains.
const (
	blockOpenMarker  = "Cards Spawned:"
	blockCloseMarker = "Finished processing"
	dealtMarker      = "Cards Dealt"
)

// Compiled regex patterns for event detection.
var (
	// Matches: "Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_0"
	// Matches: "Card Purchased: InstanceId: itm_1 - TemplateId:T001 - Target:Storage_2"
	// Captures: (1) instance id, (2) template id, (3) target
	purchasePattern = regexp.MustCompile(
		`Card Purchased: InstanceId:\s*([^ ]+)\s*-\s*TemplateId:?\s*([^ ]+)\s*-\s*Target:(\S+)`,
	)

	// Matches: "Successfully removed item itm_1"
	// Matches: "Sold Card itm_1"
	// Captures: (1) instance id
	soldPattern = regexp.MustCompile(
		`(?:Successfully removed item|Sold Card)\s+([^ ]+)`,
	)

	// Matches: "Successfully moved card itm_1 to Socket_4"
	// Captures: (1) instance id, (2) socket
	moveSocketPattern = regexp.MustCompile(
		`Successfully moved card ([^ ]+) to (Socket_[0-9]+)`,
	)

	// Matches: "ID: [itm_1]", also repeated on "Cards Dealt" lines
	// Captures: (1) id
	idPattern = regexp.MustCompile(`ID: \[([^\]]+)\]`)

	// Matches: "- Owner: [Player]"
	ownerPattern = regexp.MustCompile(`- Owner: \[([^\]]+)\]`)

	// Matches: "- Socket: [Socket_3]"
	socketPattern = regexp.MustCompile(`- Socket: \[([^\]]+)\]`)

	// Matches: "- Section: [Hand]"
	sectionPattern = regexp.MustCompile(`- Section: \[([^\]]+)\]`)
)
