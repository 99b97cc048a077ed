// Package catalog holds the static item and monster tables that template
// identifiers are resolved against.
//
// Catalogs are loaded once at startup and never mutated afterwards, so a
// loaded catalog is safe for concurrent use by multiple goroutines.
package catalog

import (
	"sort"
	"strings"
)

// Enchantment is one enchantment variant of an item.
type Enchantment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Item is the display record of an item template.
type Item struct {
	// ID is the template id. Lookup always fills it in, even when the
	// source file keys records by template id without repeating it.
	ID           string        `json:"id"`
	NameZh       string        `json:"name_zh"`
	Enchantments []Enchantment `json:"enchantments,omitempty"`
	Image        string        `json:"image,omitempty"`
}

// SubItem is a skill or item carried by a monster.
type SubItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Monster is the display record of an encounter.
type Monster struct {
	ID     string    `json:"id,omitempty"`
	Name   string    `json:"name"`
	NameZh string    `json:"name_zh"`
	Skills []SubItem `json:"skills"`
	Items  []SubItem `json:"items"`
	Image  string    `json:"image"`
}

// Items maps template ids to item records.
type Items struct {
	byID map[string]Item
}

// NewItems builds an item catalog from records keyed by template id.
func NewItems(records map[string]Item) *Items {
	byID := make(map[string]Item, len(records))
	for id, it := range records {
		byID[id] = it
	}
	return &Items{byID: byID}
}

// Lookup returns a copy of the record for tid with ID set to tid.
func (c *Items) Lookup(tid string) (Item, bool) {
	it, ok := c.byID[tid]
	if !ok {
		return Item{}, false
	}
	it.ID = tid
	if it.Enchantments != nil {
		it.Enchantments = append([]Enchantment(nil), it.Enchantments...)
	}
	return it, true
}

// Len returns the number of records.
func (c *Items) Len() int { return len(c.byID) }

// Monsters maps template ids to monster records.
type Monsters struct {
	byID map[string]Monster
}

// NewMonsters builds a monster catalog from records keyed by template id.
func NewMonsters(records map[string]Monster) *Monsters {
	byID := make(map[string]Monster, len(records))
	for id, m := range records {
		byID[id] = m
	}
	return &Monsters{byID: byID}
}

// Lookup returns a copy of the record for id with ID set to id.
func (c *Monsters) Lookup(id string) (Monster, bool) {
	m, ok := c.byID[id]
	if !ok {
		return Monster{}, false
	}
	m.ID = id
	return cloneMonster(m), true
}

// Len returns the number of records.
func (c *Monsters) Len() int { return len(c.byID) }

// Search returns monsters whose name or name_zh contains query,
// case-insensitively, ordered by name then id.
// An empty query matches every monster.
func (c *Monsters) Search(query string) []Monster {
	q := strings.ToLower(query)
	var out []Monster
	for id, m := range c.byID {
		if strings.Contains(strings.ToLower(m.NameZh), q) || strings.Contains(strings.ToLower(m.Name), q) {
			m.ID = id
			out = append(out, cloneMonster(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneMonster(m Monster) Monster {
	if m.Skills != nil {
		m.Skills = append([]SubItem(nil), m.Skills...)
	}
	if m.Items != nil {
		m.Items = append([]SubItem(nil), m.Items...)
	}
	return m
}
