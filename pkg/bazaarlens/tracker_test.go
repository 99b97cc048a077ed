package bazaarlens_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
)

// feed applies lines in order and returns the indexes of lines that
// requested a publish.
func feed(tr *bazaarlens.Tracker, lines ...string) []int {
	var published []int
	for i, line := range lines {
		if tr.HandleLine(line) {
			published = append(published, i)
		}
	}
	return published
}

func syncBlock(cards ...[3]string) []string {
	lines := []string{"[BoardManager] Cards Spawned:"}
	for _, c := range cards {
		lines = append(lines,
			"ID: ["+c[0]+"]",
			"  - Owner: ["+c[1]+"]",
			"  - Section: ["+c[2]+"]",
		)
	}
	return append(lines, "[BoardManager] Finished processing")
}

func TestTracker_PurchaseToHand(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	published := feed(tr, "Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_0")

	assert.Equal(t, []int{0}, published)
	assert.Equal(t, []string{"itm_1"}, tr.Hand())
	assert.Empty(t, tr.Stash())
	assert.Equal(t, "T001", tr.Instances().Resolve("itm_1"))
}

func TestTracker_StoragePurchaseMovesToStash(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_0",
		"Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Storage_0",
	)

	// hand and stash stay disjoint: the storage purchase reassigns itm_1
	assert.Equal(t, []string{"itm_1"}, tr.Stash())
	assert.Empty(t, tr.Hand())
}

func TestTracker_SyncBlock(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, "Card Purchased: InstanceId: itm_9 - TemplateId T009 - Target:Hand_0")
	require.Equal(t, []string{"itm_9"}, tr.Hand())

	lines := syncBlock([3]string{"itm_2", "Player", "Hand"})
	published := feed(tr, lines...)

	assert.Equal(t, []int{len(lines) - 1}, published, "publish only at block close")
	assert.Equal(t, []string{"itm_2"}, tr.Hand())
	assert.False(t, tr.InBlock())
}

func TestTracker_SyncBlockClearsHandOnce(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, syncBlock(
		[3]string{"itm_1", "Player", "Hand"},
		[3]string{"itm_2", "Player", "Stash"},
		[3]string{"itm_3", "Player", "Hand"},
	)...)

	assert.Equal(t, []string{"itm_1", "itm_3"}, tr.Hand())
	assert.Equal(t, []string{"itm_2"}, tr.Stash())
}

func TestTracker_SyncBlockWithoutHandKeepsHand(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, "Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_0")
	feed(tr, syncBlock([3]string{"itm_2", "Player", "Stash"})...)

	assert.Equal(t, []string{"itm_1"}, tr.Hand())
	assert.Equal(t, []string{"itm_2"}, tr.Stash())
}

func TestTracker_SyncBlockIdempotent(t *testing.T) {
	block := syncBlock(
		[3]string{"itm_1", "Player", "Hand"},
		[3]string{"itm_2", "Player", "Stash"},
		[3]string{"itm_3", "Opponent", "Hand"},
	)

	tr := bazaarlens.NewTracker(map[string]string{"itm_3": "mon_3"})
	feed(tr, block...)
	hand, stash, enc := tr.Hand(), tr.Stash(), tr.Encounter()

	feed(tr, block...)
	assert.Equal(t, hand, tr.Hand())
	assert.Equal(t, stash, tr.Stash())
	assert.Equal(t, enc, tr.Encounter())
}

func TestTracker_Sold(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, syncBlock(
		[3]string{"itm_2", "Player", "Hand"},
		[3]string{"itm_3", "Player", "Stash"},
	)...)

	published := feed(tr, "Successfully removed item itm_2", "Sold Card itm_3")

	assert.Equal(t, []int{0, 1}, published)
	assert.Empty(t, tr.Hand())
	assert.Empty(t, tr.Stash())
}

func TestTracker_SoldInsideBlockIgnored(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, "Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Storage_0")
	feed(tr, "Cards Spawned:", "Successfully removed item itm_1", "Finished processing")

	assert.Equal(t, []string{"itm_1"}, tr.Stash())
}

func TestTracker_PurchaseInsideBlock(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Cards Spawned:",
		"Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_0",
		"Card Purchased: InstanceId: itm_2 - TemplateId T002 - Target:Storage_1",
	)

	assert.Empty(t, tr.Hand(), "non-storage purchase waits for the block")
	assert.Equal(t, []string{"itm_2"}, tr.Stash())
	assert.Equal(t, "T001", tr.Instances().Resolve("itm_1"))
}

func TestTracker_NonItemsIgnoredForInventory(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	published := feed(tr,
		"Card Purchased: InstanceId: eft_1 - TemplateId E001 - Target:Hand_0",
		"Card Purchased: InstanceId: ste_1 - TemplateId S001 - Target:Storage_0",
	)
	feed(tr, syncBlock([3]string{"ste_1", "Player", "Hand"})...)

	assert.Empty(t, published)
	assert.Empty(t, tr.Hand())
	assert.Empty(t, tr.Stash())
	assert.Equal(t, "E001", tr.Instances().Resolve("eft_1"))
}

func TestTracker_Dealt(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	published := feed(tr, "[Combat] Cards Dealt: ID: [mon_5] Owner: Opponent ID: [mon_6] ID: [mon_5]")

	assert.Equal(t, []int{0}, published)
	assert.Equal(t, []string{"mon_5", "mon_6"}, tr.Encounter())

	feed(tr, "Cards Dealt: ID: [mon_7]")
	assert.Equal(t, []string{"mon_7"}, tr.Encounter())
}

func TestTracker_OpponentPlacementsDedup(t *testing.T) {
	tr := bazaarlens.NewTracker(map[string]string{
		"itm_a": "mon_1",
		"itm_b": "mon_1",
		"itm_c": "mon_2",
	})
	feed(tr, "Cards Dealt: ID: [stale]")
	feed(tr, syncBlock(
		[3]string{"itm_a", "Opponent", "Hand"},
		[3]string{"itm_b", "Opponent", "Hand"},
		[3]string{"itm_c", "Opponent", "Stash"},
		[3]string{"itm_x", "Opponent", "Hand"},
	)...)

	// block open clears the previous encounter; unknown ids fall back to the iid
	assert.Equal(t, []string{"mon_1", "mon_2", "itm_x"}, tr.Encounter())
	assert.Empty(t, tr.Hand())
}

func TestTracker_UnknownOwnerIgnored(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, syncBlock([3]string{"itm_1", "Neutral", "Hand"})...)

	assert.Empty(t, tr.Hand())
	assert.Empty(t, tr.Encounter())
}

func TestTracker_FieldIDClearsCursor(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Cards Spawned:",
		"ID: [itm_1]",
		"- Owner: [Player]",
		"- Socket: [Socket_1]",
		"- Section: [Hand]",
		"ID: [itm_2]",
		"- Section: [Hand]", // no owner line for itm_2
		"Finished processing",
	)

	assert.Equal(t, []string{"itm_1"}, tr.Hand())
}

func TestTracker_SectionWithoutID(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	published := feed(tr, "Cards Spawned:", "- Owner: [Player]", "- Section: [Hand]")

	assert.Empty(t, published)
	assert.Empty(t, tr.Hand())
	assert.True(t, tr.InBlock())
}

func TestTracker_FieldsOutsideBlockIgnored(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	published := feed(tr, "ID: [itm_1]", "- Owner: [Player]", "- Section: [Hand]", "Finished processing")

	assert.Empty(t, published)
	assert.Empty(t, tr.Hand())
}

func TestTracker_MoveToSocket(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Cards Spawned:",
		"ID: [itm_1]",
		"- Owner: [Player]",
		"- Socket: [Socket_1]",
		"- Section: [Hand]",
		"ID: [itm_2]",
		"- Owner: [Player]",
		"- Section: [Stash]",
		"- Socket: [Socket_8]", // socket after section is still remembered
		"Finished processing",
	)

	section, ok := tr.SocketSection("Socket_8")
	require.True(t, ok)
	assert.Equal(t, "Stash", section)

	published := feed(tr,
		"Successfully moved card itm_1 to Socket_8",
		"Successfully moved card itm_2 to Socket_1",
		"Successfully moved card itm_3 to Socket_99", // unknown socket
		"Successfully moved card eft_1 to Socket_1",  // not an item
	)

	assert.Equal(t, []int{0, 1}, published)
	assert.Equal(t, []string{"itm_2"}, tr.Hand())
	assert.Equal(t, []string{"itm_1"}, tr.Stash())
}

func TestTracker_MoveToSocketInsideBlock(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, syncBlock([3]string{"itm_1", "Player", "Hand"})...)
	feed(tr, "Cards Spawned:", "ID: [itm_1]", "- Owner: [Player]", "- Socket: [Socket_4]", "- Section: [Stash]")

	published := feed(tr, "Successfully moved card itm_5 to Socket_4")
	assert.Empty(t, published, "no publish while a block is open")
	assert.Contains(t, tr.Stash(), "itm_5")
}

func TestTracker_BlockCloseOutsideBlock(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	assert.Empty(t, feed(tr, "Finished processing"))
}

func TestTracker_NestedBlockOpen(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, "Cards Spawned:", "ID: [itm_1]", "- Owner: [Player]", "- Section: [Hand]")
	feed(tr, "Cards Spawned:", "ID: [itm_2]", "- Owner: [Player]", "- Section: [Hand]", "Finished processing")

	// the second open does not restart the block, so hand is not cleared again
	assert.Equal(t, []string{"itm_1", "itm_2"}, tr.Hand())
}

func TestTracker_Reset(t *testing.T) {
	tr := bazaarlens.NewTracker(map[string]string{"itm_1": "T001"})
	feed(tr,
		"Card Purchased: InstanceId: itm_2 - TemplateId T002 - Target:Hand_0",
		"Cards Dealt: ID: [mon_1]",
		"Cards Spawned:",
	)

	rescan := map[string]string{"itm_7": "T007"}
	tr.Reset(rescan)

	assert.Empty(t, tr.Hand())
	assert.Empty(t, tr.Stash())
	assert.Empty(t, tr.Encounter())
	assert.False(t, tr.InBlock())
	assert.Equal(t, rescan, tr.Instances().Mapping())
}

func TestTracker_HandStashDisjoint(t *testing.T) {
	ids := []string{"itm_1", "itm_2", "itm_3", "eft_1"}
	sockets := []string{"Socket_1", "Socket_2"}
	sections := []string{"Hand", "Stash"}
	owners := []string{"Player", "Opponent"}

	rng := rand.New(rand.NewSource(42))
	pick := func(s []string) string { return s[rng.Intn(len(s))] }

	tr := bazaarlens.NewTracker(nil)
	for i := 0; i < 5000; i++ {
		var line string
		switch rng.Intn(9) {
		case 0:
			line = "Card Purchased: InstanceId: " + pick(ids) + " - TemplateId T1 - Target:" + pick([]string{"Hand_0", "Storage_0"})
		case 1:
			line = "Successfully removed item " + pick(ids)
		case 2:
			line = "Cards Spawned:"
		case 3:
			line = "Finished processing"
		case 4:
			line = "ID: [" + pick(ids) + "]"
		case 5:
			line = "- Owner: [" + pick(owners) + "]"
		case 6:
			line = "- Socket: [" + pick(sockets) + "]"
		case 7:
			line = "- Section: [" + pick(sections) + "]"
		case 8:
			line = "Successfully moved card " + pick(ids) + " to " + pick(sockets)
		}
		tr.HandleLine(line)

		stash := make(map[string]bool)
		for _, iid := range tr.Stash() {
			stash[iid] = true
		}
		for _, iid := range tr.Hand() {
			if stash[iid] {
				t.Fatalf("after line %d (%q): %s in both hand and stash", i, line, iid)
			}
		}
		enc := make(map[string]bool)
		for _, tid := range tr.Encounter() {
			if enc[tid] {
				t.Fatalf("after line %d (%q): duplicate encounter %s", i, line, tid)
			}
			enc[tid] = true
		}
	}
}
