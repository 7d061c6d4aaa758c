package entity

import "snake-arena/game/types"

// Food is a single collectible cell. Position and color never change after spawn.
type Food struct {
	Position types.Position
	Color    types.Color
}

func NewFood(pos types.Position, color types.Color) Food {
	return Food{Position: pos, Color: color}
}
