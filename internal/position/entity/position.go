package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Bounds of both chart axes, inclusive.
const (
	MinCoordinate = -10.0
	MaxCoordinate = 10.0
)

// Position is a political_position row joined with its owner.
type Position struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"userId"`
	DiscordID string    `db:"discordId"`
	Name      string    `db:"name"`
	X         float64   `db:"positionX"`
	Y         float64   `db:"positionY"`
	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}

// GraphPoint is one entry of the aggregate chart read.
type GraphPoint struct {
	DiscordID string  `db:"usuario" json:"usuario"`
	Name      string  `db:"name" json:"name"`
	X         float64 `db:"x" json:"x"`
	Y         float64 `db:"y" json:"y"`
}

// InRange reports whether v is a usable coordinate.
func InRange(v float64) bool {
	return !math.IsNaN(v) && v >= MinCoordinate && v <= MaxCoordinate
}

// Quadrant of the political compass. X grows to the right, Y towards authority.
type Quadrant string

const (
	AuthoritarianRight Quadrant = "Autoritário Direita"
	AuthoritarianLeft  Quadrant = "Autoritário Esquerda"
	LibertarianRight   Quadrant = "Libertário Direita"
	LibertarianLeft    Quadrant = "Libertário Esquerda"
)

// Quadrants in legend order.
var Quadrants = []Quadrant{AuthoritarianRight, AuthoritarianLeft, LibertarianRight, LibertarianLeft}

// QuadrantOf classifies a point. Points on an axis fall into LibertarianLeft.
func QuadrantOf(x, y float64) Quadrant {
	switch {
	case x > 0 && y > 0:
		return AuthoritarianRight
	case x < 0 && y > 0:
		return AuthoritarianLeft
	case x > 0 && y < 0:
		return LibertarianRight
	default:
		return LibertarianLeft
	}
}

// Intensity buckets the distance from the centre of the chart.
type Intensity string

const (
	Moderate Intensity = "Moderado"
	Strong   Intensity = "Forte"
	Extreme  Intensity = "Extremo"
)

// IntensityOf returns the bucket for a point and its distance from the origin.
func IntensityOf(x, y float64) (Intensity, float64) {
	d := math.Hypot(x, y)
	switch {
	case d < 5:
		return Moderate, d
	case d < 8:
		return Strong, d
	default:
		return Extreme, d
	}
}

func (p GraphPoint) Quadrant() Quadrant { return QuadrantOf(p.X, p.Y) }
