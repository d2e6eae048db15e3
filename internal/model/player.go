package model

// DiceType is the die a player rolls for attack or defense
type DiceType string

const (
	DiceD4 DiceType = "D4"
	DiceD6 DiceType = "D6"
)

// AggressionMode configures a virtual player's behavior
type AggressionMode string

const (
	ModeAttacker  AggressionMode = "attacker"
	ModeDefensive AggressionMode = "defensive"
)

// PlayerStats are the running per-player counters consumed at end of game.
// NbCombat is always recomputed as NbVictory + NbDefeat.
type PlayerStats struct {
	NbVictory        int `json:"nbVictory"`
	NbDefeat         int `json:"nbDefeat"`
	NbCombat         int `json:"nbCombat"`
	NbEvasion        int `json:"nbEvasion"`
	DamageDealt      int `json:"damageDealt"`
	LifeLost         int `json:"lifeLost"`
	TilePercentage   int `json:"tilePercentage"`
	DoorsManipulated int `json:"doorsManipulated"`
}

// Player is a participant in a room
type Player struct {
	Name        string         `json:"name"`
	Avatar      string         `json:"avatar"`
	IsAdmin     bool           `json:"isAdmin"`
	IsVirtual   bool           `json:"isVirtual"`
	Mode        AggressionMode `json:"mode,omitempty"`
	AttackDice  DiceType       `json:"attackDice"`
	DefenseDice DiceType       `json:"defenseDice"`
	Life        int            `json:"life"`
	Speed       int            `json:"speed"`

	Position Position `json:"position"`
	Spawn    Position `json:"spawn"`

	MovementLeft int    `json:"movementLeft"`
	ActionsLeft  int    `json:"actionsLeft"`
	Inventory    []Item `json:"inventory"`

	Stats PlayerStats `json:"stats"`

	// distinct coordinates this player has stood on, for exploration %
	Visited map[Position]struct{} `json:"-"`
}

// ResetTurn restores the per-turn movement and action budget
func (p *Player) ResetTurn() {
	p.MovementLeft = p.Speed
	p.ActionsLeft = 1
}

// MarkVisited records the player's current position in its visit ledger
func (p *Player) MarkVisited() {
	if p.Visited == nil {
		p.Visited = make(map[Position]struct{})
	}
	p.Visited[p.Position] = struct{}{}
}

// HoldsFlag reports whether the player carries the capture objective
func (p *Player) HoldsFlag() bool {
	for _, item := range p.Inventory {
		if item.Kind == ItemFlag {
			return true
		}
	}
	return false
}

// RemoveItem takes the first item of the given kind out of the inventory.
// The second return is false when the player does not hold one.
func (p *Player) RemoveItem(kind ItemKind) (Item, bool) {
	for i, item := range p.Inventory {
		if item.Kind == kind {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return item, true
		}
	}
	return Item{}, false
}
