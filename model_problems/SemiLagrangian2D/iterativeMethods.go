package SemiLagrangian2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/macflow/macflow/MAC2D"
	"github.com/macflow/macflow/types"
	"github.com/macflow/macflow/utils"
)

// The pressure satisfies the discrete Poisson equation
//
//	N(i,j)*p(i,j) - sum p(nb) = -coef * div(i,j),  coef = rho*dx*dx/dt
//
// where N counts the in-domain, non-SOLID axis neighbours. SOLID cells are
// skipped entirely, so the solid interface behaves as a homogeneous Neumann
// boundary. All three solvers share the per-cell update below and the RMS
// relative-residual stopping rule.

// getUpdate returns the relaxed pressure for cell (i, j), or ok=false when
// the cell is SOLID or has no usable neighbour. Neighbour accumulation is
// done in float64 regardless of the working precision.
func (sl *SemiLagrangian) getUpdate(i, j int, coef float64) (pNew types.Real, ok bool) {
	f := sl.Fields
	if f.Label(i, j) != types.FLUID {
		return 0, false
	}
	sumP, nb := sl.neighborPressureSum(i, j)
	if nb == 0 {
		return 0, false
	}
	return types.Real((-coef*float64(f.Div.Get(i, j)) + sumP) / float64(nb)), true
}

func (sl *SemiLagrangian) neighborPressureSum(i, j int) (sumP float64, nb int) {
	f := sl.Fields
	if i+1 < sl.Nx && f.Label(i+1, j) != types.SOLID {
		sumP += float64(f.P.Get(i+1, j))
		nb++
	}
	if i-1 >= 0 && f.Label(i-1, j) != types.SOLID {
		sumP += float64(f.P.Get(i-1, j))
		nb++
	}
	if j+1 < sl.Ny && f.Label(i, j+1) != types.SOLID {
		sumP += float64(f.P.Get(i, j+1))
		nb++
	}
	if j-1 >= 0 && f.Label(i, j-1) != types.SOLID {
		sumP += float64(f.P.Get(i, j-1))
		nb++
	}
	return
}

// computeResidualNorm returns the RMS of the Poisson residual
//
//	r(i,j) = -coef*div(i,j) - (N*p(i,j) - sum p(nb))
//
// over FLUID cells. Per-column partial sums keep the float64 reduction
// deterministic for any parallel degree.
func (sl *SemiLagrangian) computeResidualNorm(coef float64) float64 {
	var (
		f      = sl.Fields
		sumSq  = make([]float64, sl.Nx)
		counts = make([]float64, sl.Nx)
	)
	utils.ParallelFor(f.ParallelDegree, sl.Nx, func(i int) {
		for j := 0; j < sl.Ny; j++ {
			if f.Label(i, j) != types.FLUID {
				continue
			}
			sumP, nb := sl.neighborPressureSum(i, j)
			r := -coef*float64(f.Div.Get(i, j)) -
				(float64(nb)*float64(f.P.Get(i, j)) - sumP)
			sumSq[i] += r * r
			counts[i]++
		}
	})
	count := floats.Sum(counts)
	if count == 0 {
		return 0
	}
	return math.Sqrt(floats.Sum(sumSq) / count)
}

// checkConvergence reports whether the solver should stop. The first call
// (it == 0) records res as the reference residual; afterwards the criterion
// is relative: res/res0 < tol.
func checkConvergence(res float64, res0 *float64, it int, tol float64) bool {
	if it == 0 {
		*res0 = res
		return *res0 < 1.e-30
	}
	return res / *res0 < tol
}

func (sl *SemiLagrangian) poissonCoef() float64 {
	return float64(sl.Density) * float64(sl.Dx) * float64(sl.Dx) / float64(sl.Dt)
}

// SolveJacobi relaxes the pressure with Jacobi sweeps. All reads within a
// sweep come from the previous iteration, so the updates land in a scratch
// grid and are copied back over FLUID cells after the sweep.
func (sl *SemiLagrangian) SolveJacobi(maxIters int, tol float64) {
	var (
		f    = sl.Fields
		coef = sl.poissonCoef()
		res0 = 1.
	)
	f.ComputeDiv()
	if sl.pScratch == nil {
		sl.pScratch = MAC2D.NewGrid2D(sl.Nx, sl.Ny)
	}
	pNew := sl.pScratch

	for it := 0; it < maxIters; it++ {
		utils.ParallelFor(f.ParallelDegree, sl.Nx, func(i int) {
			for j := 0; j < sl.Ny; j++ {
				if val, ok := sl.getUpdate(i, j, coef); ok {
					pNew.Set(i, j, val)
				} else {
					pNew.Set(i, j, f.P.Get(i, j))
				}
			}
		})
		utils.ParallelFor(f.ParallelDegree, sl.Nx, func(i int) {
			for j := 0; j < sl.Ny; j++ {
				if f.Label(i, j) == types.FLUID {
					f.P.Set(i, j, pNew.Get(i, j))
				}
			}
		})

		if res := sl.computeResidualNorm(coef); checkConvergence(res, &res0, it, tol) {
			return
		}
	}
	fmt.Printf("\n%s: reached max iterations %d\n", types.JACOBI, maxIters)
}

// SolveGaussSeidel sweeps the grid in place in row-major order, so each
// cell sees the freshest neighbour values. Always sequential.
func (sl *SemiLagrangian) SolveGaussSeidel(maxIters int, tol float64) {
	var (
		f    = sl.Fields
		coef = sl.poissonCoef()
		res0 = 1.
	)
	f.ComputeDiv()

	for it := 0; it < maxIters; it++ {
		for i := 0; i < sl.Nx; i++ {
			for j := 0; j < sl.Ny; j++ {
				if val, ok := sl.getUpdate(i, j, coef); ok {
					f.P.Set(i, j, val)
				}
			}
		}

		if res := sl.computeResidualNorm(coef); checkConvergence(res, &res0, it, tol) {
			return
		}
	}
	fmt.Printf("\n%s: reached max iterations %d\n", types.GAUSS_SEIDEL, maxIters)
}

// SolveRedBlackGaussSeidel runs the Gauss-Seidel update in two colour
// passes, (i+j) even then odd. Within a pass every neighbour is of the
// opposite colour, so columns can be relaxed in parallel; the barrier
// between passes is the ParallelFor return.
func (sl *SemiLagrangian) SolveRedBlackGaussSeidel(maxIters int, tol float64) {
	var (
		f    = sl.Fields
		coef = sl.poissonCoef()
		res0 = 1.
	)
	f.ComputeDiv()

	for it := 0; it < maxIters; it++ {
		for color := 0; color < 2; color++ {
			utils.ParallelFor(f.ParallelDegree, sl.Nx, func(i int) {
				for j := 0; j < sl.Ny; j++ {
					if (i+j)%2 != color {
						continue
					}
					if val, ok := sl.getUpdate(i, j, coef); ok {
						f.P.Set(i, j, val)
					}
				}
			})
		}

		if res := sl.computeResidualNorm(coef); checkConvergence(res, &res0, it, tol) {
			return
		}
	}
	fmt.Printf("\n%s: reached max iterations %d\n", types.RED_BLACK_GAUSS_SEIDEL, maxIters)
}
