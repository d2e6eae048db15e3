package model

// Terrain is the base type of a board tile
type Terrain string

const (
	TerrainEmpty Terrain = "empty"
	TerrainWall  Terrain = "wall"
	TerrainDoor  Terrain = "door"
	TerrainWater Terrain = "water"
	TerrainIce   Terrain = "ice"
)

// Position is a board coordinate (top-left origin)
type Position struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Tile is one cell of the authoritative board grid
type Tile struct {
	Position Position `json:"position"`
	Terrain  Terrain  `json:"terrain"`
	Open     bool     `json:"open,omitempty"`   // door tiles only
	Player   string   `json:"player,omitempty"` // occupant name, empty when free
	Item     *Item    `json:"item,omitempty"`
}

// Traversable reports whether a player may enter the tile.
// Occupancy is checked separately by the arbitration layer.
func (t *Tile) Traversable() bool {
	switch t.Terrain {
	case TerrainWall:
		return false
	case TerrainDoor:
		return t.Open
	default:
		return true
	}
}

// Cost is the movement-point price of entering the tile
func (t *Tile) Cost() int {
	switch t.Terrain {
	case TerrainWater:
		return 2
	case TerrainIce:
		return 0
	default:
		return 1
	}
}
