package model

// ItemKind identifies a pickup found on the board
type ItemKind string

const (
	ItemFlag   ItemKind = "flag" // capture objective
	ItemSword  ItemKind = "sword"
	ItemShield ItemKind = "shield"
	ItemPotion ItemKind = "potion"
	ItemBoots  ItemKind = "boots"
)

// MaxInventory is how many items a player may hold at once.
// A pickup beyond this triggers an item-choice prompt instead.
const MaxInventory = 2

// Item is a board pickup. Permanent items survive a combat loss;
// everything else is dropped back onto the board.
type Item struct {
	Kind      ItemKind `json:"kind" bson:"kind"`
	Permanent bool     `json:"permanent" bson:"permanent"`
}
