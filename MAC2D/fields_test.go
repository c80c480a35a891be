package MAC2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macflow/macflow/types"
)

func testFields(nx, ny int) *Fields2D {
	return NewFields2D(nx, ny, 1, 0.1, 1, 1)
}

func TestFieldExtents(t *testing.T) {
	f := testFields(10, 6)
	assert.Equal(t, 11, f.U.Nx)
	assert.Equal(t, 6, f.U.Ny)
	assert.Equal(t, 10, f.V.Nx)
	assert.Equal(t, 7, f.V.Ny)
	assert.Equal(t, 10, f.P.Nx)
	assert.Equal(t, 6, f.P.Ny)
	assert.Equal(t, 9, f.Speed.Nx)
	assert.Equal(t, 5, f.Speed.Ny)
	assert.Equal(t, 1, f.ParallelDegree)
}

func TestDivUniformFlow(t *testing.T) {
	f := testFields(12, 12)
	f.U.Fill(3)
	f.V.Fill(-2)
	f.ComputeDiv()
	assert.Equal(t, 0., f.MaxAbsDiv())
}

func TestDivLinearShear(t *testing.T) {
	// u = x gives du/dx = 1 exactly on the face stencil; v = 0.
	f := testFields(8, 8)
	for i := 0; i < f.U.Nx; i++ {
		for j := 0; j < f.U.Ny; j++ {
			f.U.Set(i, j, types.Real(i)*f.Dx)
		}
	}
	f.ComputeDiv()
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			assert.InDelta(t, 1, float64(f.Div.Get(i, j)), 1.e-12)
		}
	}
}

func TestSpeedPythagorean(t *testing.T) {
	f := testFields(8, 8)
	f.U.Fill(3)
	f.V.Fill(4)
	f.ComputeSpeed()
	for _, s := range f.Speed.A {
		assert.InDelta(t, 5, float64(s), 1.e-12)
	}
}

func TestMaxAbsDiv(t *testing.T) {
	f := testFields(8, 8)
	f.Div.Set(3, 5, -4)
	f.Div.Set(6, 1, 2)
	assert.Equal(t, 4., f.MaxAbsDiv())
}

func TestMaxAbsDivParallelAgrees(t *testing.T) {
	f := testFields(16, 16)
	f.InitRandomVelocities(7, 1)
	f.ComputeDiv()
	seq := f.MaxAbsDiv()
	f.ParallelDegree = 4
	assert.Equal(t, seq, f.MaxAbsDiv())
}

func TestSolidBorders(t *testing.T) {
	f := testFields(6, 5)
	f.SolidBorders()
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			onRing := i == 0 || i == f.Nx-1 || j == 0 || j == f.Ny-1
			if onRing {
				assert.Equal(t, types.SOLID, f.Label(i, j))
			} else {
				assert.Equal(t, types.FLUID, f.Label(i, j))
			}
		}
	}
}

func TestSolidCylinder(t *testing.T) {
	f := testFields(16, 16)
	f.SolidCylinder(8, 8, 3)
	assert.Equal(t, types.SOLID, f.Label(8, 8))
	assert.Equal(t, types.SOLID, f.Label(11, 8))
	assert.Equal(t, types.SOLID, f.Label(8, 5))
	assert.Equal(t, types.FLUID, f.Label(12, 8))
	assert.Equal(t, types.FLUID, f.Label(11, 11))
}

func TestInitPotentialGradient(t *testing.T) {
	f := testFields(16, 16)
	f.InitPotentialGradient(2, 1, 1)

	// Outermost faces carry no flux, so the discrete rhs is consistent.
	for j := 0; j < f.U.Ny; j++ {
		assert.Equal(t, types.Real(0), f.U.Get(0, j))
		assert.Equal(t, types.Real(0), f.U.Get(f.U.Nx-1, j))
	}
	for i := 0; i < f.V.Nx; i++ {
		assert.Equal(t, types.Real(0), f.V.Get(i, 0))
		assert.Equal(t, types.Real(0), f.V.Get(i, f.V.Ny-1))
	}

	// Interior faces match the finite difference of the potential.
	var (
		Lx  = types.Real(f.Nx) * f.Dx
		Ly  = types.Real(f.Ny) * f.Dy
		phi = func(i, j int) types.Real {
			x := (types.Real(i) + 0.5) * f.Dx
			y := (types.Real(j) + 0.5) * f.Dy
			return 2 *
				types.Real(math.Sin(math.Pi*float64(x/Lx))) *
				types.Real(math.Sin(math.Pi*float64(y/Ly)))
		}
	)
	for i := 1; i < f.U.Nx-1; i++ {
		for j := 0; j < f.U.Ny; j++ {
			assert.InDelta(t, float64((phi(i, j)-phi(i-1, j))/f.Dx),
				float64(f.U.Get(i, j)), 1.e-6)
		}
	}

	f.ComputeDiv()
	require.Greater(t, f.MaxAbsDiv(), 0.)
}

func TestInitRandomVelocitiesDeterministic(t *testing.T) {
	a, b := testFields(8, 8), testFields(8, 8)
	a.InitRandomVelocities(42, 1)
	b.InitRandomVelocities(42, 1)
	assert.Equal(t, a.U.A, b.U.A)
	assert.Equal(t, a.V.A, b.V.A)
}
