package model

import "time"

// SizeClass selects the board dimensions and player capacity of a room
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// SizeSpec is one row of the fixed size→capacity table
type SizeSpec struct {
	Grid       int // board is Grid x Grid cells
	MinPlayers int
	MaxPlayers int
}

// SizeTable is the fixed size→capacity table. An unknown size class is
// rejected with invalidRoomSize at room creation.
var SizeTable = map[SizeClass]SizeSpec{
	SizeSmall:  {Grid: 10, MinPlayers: 2, MaxPlayers: 4},
	SizeMedium: {Grid: 15, MinPlayers: 2, MaxPlayers: 6},
	SizeLarge:  {Grid: 20, MinPlayers: 2, MaxPlayers: 6},
}

// LayerCell is one cell of a stored game layer. The base layer carries
// terrain; the overlay layer carries items and spawn markers.
type LayerCell struct {
	Terrain Terrain `json:"terrain,omitempty" bson:"terrain,omitempty"`
	Item    *Item   `json:"item,omitempty" bson:"item,omitempty"`
	Spawn   bool    `json:"spawn,omitempty" bson:"spawn,omitempty"`
}

// Game is a persisted game definition (the map document rooms are created from)
type Game struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Size        SizeClass     `json:"size" bson:"size"`
	Base        [][]LayerCell `json:"base" bson:"base"`
	Overlay     [][]LayerCell `json:"overlay" bson:"overlay"`
	Visible     bool          `json:"visible" bson:"visible"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}
