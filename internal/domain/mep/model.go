// Package mep models the mechanical, electrical and plumbing items placed
// inside the rack tiers. Items are tagged variants: the Type discriminator
// selects which spec payload is populated, and geometry dispatch happens in
// a single switch in the builder.
package mep

// ItemType discriminates the MEP item variants.
type ItemType string

const (
	TypeDuct      ItemType = "duct"
	TypePipe      ItemType = "pipe"
	TypeConduit   ItemType = "conduit"
	TypeCableTray ItemType = "cableTray"
)

// Tier sentinel values. Regular items carry 1..tierCount; AboveRack and
// BelowRack place the item outside the tier stack; NoTier is where items
// land when their tier disappears during a rack rebuild.
const (
	TierAbove = -1
	TierBelow = -2
	NoTier    = 0
)

// DuctSpec is a rectangular sheet-metal duct. Dimensions in inches.
type DuctSpec struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Insulation float64 `json:"insulation,omitempty"`
	Offset     float64 `json:"offset,omitempty"` // vertical offset from tier center, inches
}

// PipeSpec is a run of one or more parallel pipes. Dimensions in inches.
type PipeSpec struct {
	PipeType string  `json:"pipeType"`
	Diameter float64 `json:"diameter"`
	Count    int     `json:"count"`
	Spacing  float64 `json:"spacing"` // center-to-center, inches
}

// ConduitSpec is an array of electrical conduits on the tier floor.
type ConduitSpec struct {
	ConduitType string  `json:"conduitType"`
	Diameter    float64 `json:"diameter"`
	Spacing     float64 `json:"spacing"`
	Count       int     `json:"count"`
}

// TrayType is the cable tray construction. Visual only.
type TrayType string

const (
	TrayLadder      TrayType = "ladder"
	TraySolidBottom TrayType = "solidBottom"
	TrayWireMesh    TrayType = "wireMesh"
)

// TraySpec is an open cable tray trough. Dimensions in inches.
type TraySpec struct {
	TrayType TrayType `json:"trayType"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// Item is one MEP item attached to the current rack. Exactly one of the
// spec pointers matching Type is non-nil.
type Item struct {
	ID      int64        `json:"id"`
	Type    ItemType     `json:"type"`
	Name    string       `json:"name,omitempty"`
	Tier    int          `json:"tier"`
	Color   string       `json:"color,omitempty"`
	Duct    *DuctSpec    `json:"duct,omitempty"`
	Pipe    *PipeSpec    `json:"pipe,omitempty"`
	Conduit *ConduitSpec `json:"conduit,omitempty"`
	Tray    *TraySpec    `json:"cableTray,omitempty"`
}

// Collections groups items by trade the way the manifest stores them.
type Collections struct {
	Ductwork   []Item `json:"ductwork"`
	Piping     []Item `json:"piping"`
	Conduits   []Item `json:"conduits"`
	CableTrays []Item `json:"cableTrays"`
	TotalCount int    `json:"totalCount"`
}

// All flattens the collections in trade order.
func (c Collections) All() []Item {
	out := make([]Item, 0, c.TotalCount)
	out = append(out, c.Ductwork...)
	out = append(out, c.Piping...)
	out = append(out, c.Conduits...)
	out = append(out, c.CableTrays...)
	return out
}

// bucket returns a pointer to the slice holding the given type.
func (c *Collections) bucket(t ItemType) *[]Item {
	switch t {
	case TypeDuct:
		return &c.Ductwork
	case TypePipe:
		return &c.Piping
	case TypeConduit:
		return &c.Conduits
	case TypeCableTray:
		return &c.CableTrays
	}
	return nil
}

// Add appends the item to its trade bucket and refreshes TotalCount.
func (c *Collections) Add(item Item) bool {
	b := c.bucket(item.Type)
	if b == nil {
		return false
	}
	*b = append(*b, item)
	c.TotalCount++
	return true
}

// Remove deletes the item with the given id from the given trade bucket.
func (c *Collections) Remove(id int64, t ItemType) bool {
	b := c.bucket(t)
	if b == nil {
		return false
	}
	for i, item := range *b {
		if item.ID == id {
			*b = append((*b)[:i], (*b)[i+1:]...)
			c.TotalCount--
			return true
		}
	}
	return false
}

// Find returns the item with the given id across all buckets.
func (c Collections) Find(id int64) (Item, bool) {
	for _, item := range c.All() {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Replace swaps all buckets for the given item set.
func (c *Collections) Replace(items []Item) {
	*c = Collections{}
	for _, item := range items {
		c.Add(item)
	}
}

// ReplaceType swaps only the bucket for one trade.
func (c *Collections) ReplaceType(t ItemType, items []Item) {
	b := c.bucket(t)
	if b == nil {
		return
	}
	c.TotalCount -= len(*b)
	*b = nil
	for _, item := range items {
		if item.Type == t {
			*b = append(*b, item)
			c.TotalCount++
		}
	}
}
