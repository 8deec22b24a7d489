package world

import "math"

// Vec2 is a position or direction in dungeon units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns the unit vector, or zero for a zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// DistToSegment returns the distance from p to the segment ab.
func DistToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Dist(p, a.Add(ab.Scale(t)))
}
