package MAC2D

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/macflow/macflow/types"
	"github.com/macflow/macflow/utils"
)

// Stagger selects where a grid's nodes sit relative to the pressure cell:
// cell centres, x-face centres (u) or y-face centres (v). The sampler uses
// it to shift the fractional index before flooring.
type Stagger uint8

const (
	CellCentre Stagger = iota
	UFace
	VFace
)

// Grid2D is a flat rectangular scalar field. The value at column i, row j
// lives at linear offset Ny*i + j, so j varies fastest. Every field in the
// simulation shares this layout.
type Grid2D struct {
	Nx, Ny int
	A      []types.Real
}

func NewGrid2D(nx, ny int) (g *Grid2D) {
	if nx < 1 || ny < 1 {
		panic(fmt.Errorf("invalid grid extents %d x %d", nx, ny))
	}
	g = &Grid2D{
		Nx: nx,
		Ny: ny,
		A:  make([]types.Real, nx*ny),
	}
	return
}

func (g *Grid2D) InBounds(i, j int) bool {
	return i >= 0 && i < g.Nx && j >= 0 && j < g.Ny
}

func (g *Grid2D) Get(i, j int) types.Real {
	if !g.InBounds(i, j) {
		panic(fmt.Errorf("grid index (%d,%d) out of bounds for %d x %d", i, j, g.Nx, g.Ny))
	}
	return g.A[g.Ny*i+j]
}

func (g *Grid2D) Set(i, j int, val types.Real) {
	if !g.InBounds(i, j) {
		panic(fmt.Errorf("grid index (%d,%d) out of bounds for %d x %d", i, j, g.Nx, g.Ny))
	}
	g.A[g.Ny*i+j] = val
}

func (g *Grid2D) Fill(val types.Real) {
	for k := range g.A {
		g.A[k] = val
	}
}

// FillRandom loads every node with a uniform value in [-amplitude, amplitude).
func (g *Grid2D) FillRandom(rng *rand.Rand, amplitude types.Real) {
	for k := range g.A {
		g.A[k] = amplitude * (2*types.Real(rng.Float64()) - 1)
	}
}

// Interpolate samples the grid at the physical point (x, y) by bilinear
// interpolation, honoring the staggered node positions:
//
//	UFace:      nodes at (i*dx, (j+0.5)*dy), so jr -= 0.5
//	VFace:      nodes at ((i+0.5)*dx, j*dy), so ir -= 0.5
//	CellCentre: no offset
//
// The fractional index splits into an integer base (i0, j0) and weights
// (fx, fy); the base is clamped so the 2x2 stencil stays in bounds, then the
// four surrounding nodes are blended.
func (g *Grid2D) Interpolate(x, y, dx, dy types.Real, stagger Stagger) types.Real {
	var (
		ir = x / dx
		jr = y / dy
	)
	switch stagger {
	case UFace:
		jr -= 0.5
	case VFace:
		ir -= 0.5
	}

	i0 := int(math.Floor(float64(ir)))
	j0 := int(math.Floor(float64(jr)))

	var (
		fx = ir - types.Real(i0)
		fy = jr - types.Real(j0)
	)

	i0 = utils.Clamp(i0, 0, g.Nx-2)
	j0 = utils.Clamp(j0, 0, g.Ny-2)

	var (
		f00 = g.Get(i0, j0)
		f10 = g.Get(i0+1, j0)
		f01 = g.Get(i0, j0+1)
		f11 = g.Get(i0+1, j0+1)
	)
	return (1-fy)*((1-fx)*f00+fx*f10) + fy*((1-fx)*f01+fx*f11)
}
