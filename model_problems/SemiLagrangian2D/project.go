package SemiLagrangian2D

import (
	"github.com/macflow/macflow/types"
	"github.com/macflow/macflow/utils"
)

// MakeIncompressible projects the velocity field onto the divergence-free
// subspace: run the configured pressure solver, then apply the pressure
// gradient to the face velocities.
func (sl *SemiLagrangian) MakeIncompressible() {
	var (
		maxIters = sl.Params.Solver.MaxIterations
		tol      = sl.Params.Solver.Tolerance
	)
	switch sl.Params.SolverKind() {
	case types.JACOBI:
		sl.SolveJacobi(maxIters, tol)
	case types.RED_BLACK_GAUSS_SEIDEL:
		sl.SolveRedBlackGaussSeidel(maxIters, tol)
	default:
		sl.SolveGaussSeidel(maxIters, tol)
	}
	sl.updateVelocities()
}

// updateVelocities applies the explicit pressure-gradient correction to
// every interior face. A face between a SOLID cell and anything else is
// pinned to usolid. The outermost face layer is the prescribed domain
// boundary and is never touched.
func (sl *SemiLagrangian) updateVelocities() {
	var (
		f     = sl.Fields
		coefX = sl.Dt / (sl.Density * sl.Dx)
		coefY = sl.Dt / (sl.Density * sl.Dy)
	)
	// u-faces at 1 <= i < nx sit between cells (i-1, j) and (i, j).
	utils.ParallelFor(f.ParallelDegree, sl.Nx-1, func(k int) {
		i := k + 1
		for j := 0; j < sl.Ny; j++ {
			if f.Label(i-1, j) == types.SOLID || f.Label(i, j) == types.SOLID {
				f.U.Set(i, j, f.Usolid)
				continue
			}
			f.U.Set(i, j, f.U.Get(i, j)-coefX*(f.P.Get(i, j)-f.P.Get(i-1, j)))
		}
	})
	// v-faces at 1 <= j < ny sit between cells (i, j-1) and (i, j).
	utils.ParallelFor(f.ParallelDegree, sl.Nx, func(i int) {
		for j := 1; j < sl.Ny; j++ {
			if f.Label(i, j-1) == types.SOLID || f.Label(i, j) == types.SOLID {
				f.V.Set(i, j, f.Usolid)
				continue
			}
			f.V.Set(i, j, f.V.Get(i, j)-coefY*(f.P.Get(i, j)-f.P.Get(i, j-1)))
		}
	})
}
