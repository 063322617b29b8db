package main

import "fmt"

// Cell is an address on the unbounded virtual lattice. A cell is not stored
// anywhere; the item it shows is derived with IndexOf.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns the cell dr rows and dc columns away from c.
func (c Cell) Add(dr, dc int) Cell {
	return Cell{c.Row + dr, c.Col + dc}
}

// Vec returns the cell as a point in cell space.
func (c Cell) Vec() Vec {
	return Vec{float64(c.Col), float64(c.Row)}
}

// IndexOf maps the cell (vr, vc) to an index in [0, itemCount). The lattice is
// flattened row by row with max(1, cols) columns and wrapped around the item
// list, so every cell resolves to a valid item. It returns 0 for an empty list.
func IndexOf(vr, vc, itemCount, cols int) int {
	if itemCount <= 0 {
		return 0
	}
	flat := vr*max(1, cols) + vc
	return floorMod(flat, itemCount)
}

// CellOf is the inverse of the flattening in IndexOf.
func CellOf(flat, cols int) Cell {
	cols = max(1, cols)
	return Cell{floorDiv(flat, cols), floorMod(flat, cols)}
}

// flatOf returns the flattened position of c.
func flatOf(c Cell, cols int) int {
	return c.Row*max(1, cols) + c.Col
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod is the remainder of floorDiv, always in [0, b) for b > 0.
func floorMod(a, b int) int {
	return ((a % b) + b) % b
}

// nearestFlatOf returns the flattened position nearest to flat whose index in a
// list of n items is k. Ties go to the position after flat.
func nearestFlatOf(flat, k, n int) int {
	ahead := flat + floorMod(k-flat, n)
	behind := ahead - n
	if flat-behind < ahead-flat {
		return behind
	}
	return ahead
}
