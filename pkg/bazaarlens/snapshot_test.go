package bazaarlens_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

func TestResolver_WithoutCatalogs(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Card Purchased: InstanceId: itm_2 - TemplateId T002 - Target:Hand_0",
		"Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Hand_1",
		"Cards Dealt: ID: [mon_5]",
	)

	snap, missing := bazaarlens.Resolver{}.Snapshot(tr)

	assert.Empty(t, missing)
	assert.Equal(t, []catalog.Item{{ID: "T001"}, {ID: "T002"}}, snap.Hand, "ordered by instance id")
	assert.NotNil(t, snap.Stash)
	assert.Empty(t, snap.Stash)
	assert.Equal(t, []catalog.Monster{{ID: "mon_5"}}, snap.Encounter)
}

func TestResolver_WithCatalogs(t *testing.T) {
	items := catalog.NewItems(map[string]catalog.Item{
		"T001": {NameZh: "短剑", Image: "T001.webp"},
	})
	monsters := catalog.NewMonsters(map[string]catalog.Monster{
		"mon_5": {Name: "Banannibal"},
	})

	tr := bazaarlens.NewTracker(nil)
	feed(tr,
		"Card Purchased: InstanceId: itm_1 - TemplateId T001 - Target:Storage_0",
		"Card Purchased: InstanceId: itm_2 - TemplateId T404 - Target:Hand_0",
		"Cards Dealt: ID: [mon_5] ID: [mon_404]",
	)

	snap, missing := bazaarlens.Resolver{Items: items, Monsters: monsters}.Snapshot(tr)

	assert.Equal(t, []string{"T404"}, missing.Hand)
	assert.Empty(t, missing.Stash)
	assert.Equal(t, []string{"mon_404"}, missing.Encounter)
	assert.Empty(t, snap.Hand)
	require.Len(t, snap.Stash, 1)
	assert.Equal(t, catalog.Item{ID: "T001", NameZh: "短剑", Image: "T001.webp"}, snap.Stash[0])
	require.Len(t, snap.Encounter, 1)
	assert.Equal(t, "mon_5", snap.Encounter[0].ID)
	assert.Equal(t, "Banannibal", snap.Encounter[0].Name)
}

func TestResolver_UnknownInstanceFallsBackToIID(t *testing.T) {
	tr := bazaarlens.NewTracker(nil)
	feed(tr, syncBlock([3]string{"itm_77", "Player", "Hand"})...)

	snap, _ := bazaarlens.Resolver{}.Snapshot(tr)
	assert.Equal(t, []catalog.Item{{ID: "itm_77"}}, snap.Hand)
}

func TestEmptySnapshot_JSON(t *testing.T) {
	b, err := json.Marshal(bazaarlens.EmptySnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"hand":[],"stash":[]}`, string(b))
}
