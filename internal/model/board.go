package model

// BuildBoard merges a game's two stored layers into the authoritative grid.
// The base layer supplies terrain (missing cells default to empty ground,
// doors start closed); the overlay supplies items and spawn markers.
// Returned spawns preserve row-major order.
func BuildBoard(g *Game) ([][]*Tile, []Position) {
	grid := SizeTable[g.Size].Grid
	board := make([][]*Tile, grid)
	var spawns []Position

	for y := 0; y < grid; y++ {
		board[y] = make([]*Tile, grid)
		for x := 0; x < grid; x++ {
			tile := &Tile{
				Position: Position{X: x, Y: y},
				Terrain:  TerrainEmpty,
			}
			if y < len(g.Base) && x < len(g.Base[y]) && g.Base[y][x].Terrain != "" {
				tile.Terrain = g.Base[y][x].Terrain
			}
			if y < len(g.Overlay) && x < len(g.Overlay[y]) {
				over := g.Overlay[y][x]
				if over.Item != nil {
					item := *over.Item
					tile.Item = &item
				}
				if over.Spawn {
					spawns = append(spawns, tile.Position)
				}
			}
			board[y][x] = tile
		}
	}
	return board, spawns
}

// InBounds reports whether pos lies on the board
func InBounds(board [][]*Tile, pos Position) bool {
	return pos.Y >= 0 && pos.Y < len(board) && pos.X >= 0 && pos.X < len(board[pos.Y])
}

// TileAt returns the tile at pos, or nil when out of bounds
func TileAt(board [][]*Tile, pos Position) *Tile {
	if !InBounds(board, pos) {
		return nil
	}
	return board[pos.Y][pos.X]
}

// Neighbors returns the orthogonally adjacent in-bounds positions of pos
func Neighbors(board [][]*Tile, pos Position) []Position {
	deltas := []Position{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}
	out := make([]Position, 0, 4)
	for _, d := range deltas {
		n := Position{X: pos.X + d.X, Y: pos.Y + d.Y}
		if InBounds(board, n) {
			out = append(out, n)
		}
	}
	return out
}

// Reachable returns every position a player standing at from can reach with
// the given movement budget, including from itself. Occupied tiles block.
func Reachable(board [][]*Tile, from Position, budget int) map[Position]struct{} {
	type node struct {
		pos  Position
		left int
	}
	best := map[Position]int{from: budget}
	queue := []node{{pos: from, left: budget}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(board, cur.pos) {
			tile := board[n.Y][n.X]
			if !tile.Traversable() || tile.Player != "" {
				continue
			}
			left := cur.left - tile.Cost()
			if left < 0 {
				continue
			}
			if prev, seen := best[n]; seen && prev >= left {
				continue
			}
			best[n] = left
			queue = append(queue, node{pos: n, left: left})
		}
	}
	out := make(map[Position]struct{}, len(best))
	for pos := range best {
		out[pos] = struct{}{}
	}
	return out
}

// NearestFree returns the closest unoccupied traversable tile to from,
// searching outward breadth-first. from itself qualifies when free.
func NearestFree(board [][]*Tile, from Position) Position {
	visited := map[Position]struct{}{from: {}}
	queue := []Position{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		tile := TileAt(board, cur)
		if tile != nil && tile.Traversable() && tile.Player == "" && tile.Item == nil {
			return cur
		}
		for _, n := range Neighbors(board, cur) {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return from
}

// CountDoors returns how many door tiles the board has
func CountDoors(board [][]*Tile) int {
	count := 0
	for _, row := range board {
		for _, tile := range row {
			if tile.Terrain == TerrainDoor {
				count++
			}
		}
	}
	return count
}
