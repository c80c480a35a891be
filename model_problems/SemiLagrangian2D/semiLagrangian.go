package SemiLagrangian2D

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"

	"github.com/macflow/macflow/InputParameters"
	"github.com/macflow/macflow/MAC2D"
	"github.com/macflow/macflow/output"
	"github.com/macflow/macflow/scene"
	"github.com/macflow/macflow/types"
	"github.com/macflow/macflow/utils"
)

// SemiLagrangian advances a 2-D incompressible velocity field on a MAC grid.
// Each step projects the field onto the divergence-free subspace through an
// iterative pressure-Poisson solve, corrects the face velocities with the
// pressure gradient, then transports both components semi-Lagrangially.
type SemiLagrangian struct {
	Params *InputParameters.SimParameters2D

	Nx, Ny              int
	Dx, Dy, Dt, Density types.Real

	Fields *MAC2D.Fields2D

	// pScratch backs the Jacobi sweep; every read must see the previous
	// iteration's values. Allocated on first use.
	pScratch *MAC2D.Grid2D

	writers       []fieldWriter
	writeFailures int

	PlotOnce sync.Once
	chart    *chart2d.Chart2D
	colorMap *utils2.ColorMap
}

type fieldWriter struct {
	name   string
	grid   func() *MAC2D.Grid2D
	writer *output.Writer
}

func NewSemiLagrangian(ip *InputParameters.SimParameters2D) (sl *SemiLagrangian, err error) {
	sl = &SemiLagrangian{
		Params:  ip,
		Nx:      ip.Nx,
		Ny:      ip.Ny,
		Dx:      types.Real(ip.Dx),
		Dy:      types.Real(ip.Dy),
		Dt:      types.Real(ip.Dt),
		Density: types.Real(ip.Density),
	}
	sl.Fields = MAC2D.NewFields2D(sl.Nx, sl.Ny, sl.Density, sl.Dt, sl.Dx, sl.Dy)
	sl.Fields.ParallelDegree = ip.ParallelDegree

	if err = scene.Apply(ip, sl.Fields); err != nil {
		return nil, fmt.Errorf("unable to apply scene objects: %w", err)
	}
	if err = sl.initializeOutputWriters(); err != nil {
		return nil, err
	}
	return sl, nil
}

func (sl *SemiLagrangian) initializeOutputWriters() error {
	var (
		ip = sl.Params
		f  = sl.Fields
	)
	enabled := []struct {
		name  string
		write bool
		grid  func() *MAC2D.Grid2D
	}{
		{"u", ip.WriteU, func() *MAC2D.Grid2D { return f.U }},
		{"v", ip.WriteV, func() *MAC2D.Grid2D { return f.V }},
		{"p", ip.WriteP, func() *MAC2D.Grid2D { return f.P }},
		{"div", ip.WriteDiv, func() *MAC2D.Grid2D { return f.Div }},
		{"normVelocity", ip.WriteNormVelocity, func() *MAC2D.Grid2D { return f.Speed }},
		{"smoke", ip.WriteSmoke, func() *MAC2D.Grid2D { return f.Smoke }},
	}
	for _, e := range enabled {
		if !e.write {
			continue
		}
		base := e.name
		if ip.Filename != "" {
			base = ip.Filename + "_" + e.name
		}
		w, err := output.NewWriter(ip.Folder, base)
		if err != nil {
			return err
		}
		sl.writers = append(sl.writers, fieldWriter{name: e.name, grid: e.grid, writer: w})
	}
	return nil
}

// WriteOutput emits all enabled fields when step lands on the sampling rate.
// Write failures are reported but never abort the run.
func (sl *SemiLagrangian) WriteOutput(step int) {
	if step%sl.Params.SamplingRate != 0 {
		return
	}
	for _, fw := range sl.writers {
		if err := fw.writer.WriteGrid2D(fw.grid()); err != nil {
			fmt.Fprintf(os.Stderr, "\nwarning: failed to write %s at step %d: %v\n",
				fw.name, step, err)
			sl.writeFailures++
		}
	}
}

// WriteFailures reports how many snapshot writes failed during the run.
func (sl *SemiLagrangian) WriteFailures() int {
	return sl.writeFailures
}

// Finalise flushes every output collection index.
func (sl *SemiLagrangian) Finalise() (err error) {
	for _, fw := range sl.writers {
		if ferr := fw.writer.Finalise(); ferr != nil && err == nil {
			err = ferr
		}
	}
	return
}

// Step runs one time step in the fixed phase order: projection, transport,
// then the diagnostics used for output and progress reporting.
func (sl *SemiLagrangian) Step() {
	sl.MakeIncompressible()
	sl.Advect()
	sl.Fields.ComputeDiv()
	sl.Fields.ComputeSpeed()
}

// Run executes the configured number of steps, writing the t=0 snapshot
// first and reporting progress roughly every 10% of the run.
func (sl *SemiLagrangian) Run(showGraph bool, graphDelay ...time.Duration) error {
	sl.Fields.ComputeDiv()
	sl.Fields.ComputeSpeed()
	sl.WriteOutput(0)

	var (
		nt          = sl.Params.Nt
		reportEvery = utils.Max(1, nt/10)
		start       = time.Now()
	)
	for t := 1; t <= nt; t++ {
		if t%reportEvery == 0 {
			fmt.Printf("\rStep %d / %d (%d%%) max |div| = %.6g",
				t, nt, 100*t/nt, sl.Fields.MaxAbsDiv())
		}
		sl.Step()
		sl.WriteOutput(t)
		sl.Plot(showGraph, graphDelay)
	}
	fmt.Printf("\nDone: %.3f s\n", time.Since(start).Seconds())

	return sl.Finalise()
}

// Plot shows the mid-height speed profile as a live series. The window is
// created once on first use and updated in place each call.
func (sl *SemiLagrangian) Plot(showGraph bool, graphDelay []time.Duration) {
	if !showGraph {
		return
	}
	var (
		f    = sl.Fields
		jMid = (f.Speed.Ny - 1) / 2
	)
	sl.PlotOnce.Do(func() {
		xMax := float32(f.Speed.Nx-1) * float32(sl.Dx)
		sl.chart = chart2d.NewChart2D(1280, 1024, 0, xMax, 0, 2)
		sl.colorMap = utils2.NewColorMap(-1, 1, 1)
		go sl.chart.Plot()
	})

	var (
		xData = make([]float64, f.Speed.Nx)
		yData = make([]float64, f.Speed.Nx)
	)
	for i := 0; i < f.Speed.Nx; i++ {
		xData[i] = (float64(i) + 0.5) * float64(sl.Dx)
		yData[i] = float64(f.Speed.Get(i, jMid))
	}
	if err := sl.chart.AddSeries("speed", xData, yData,
		chart2d.NoGlyph, chart2d.Solid, sl.colorMap.GetRGB(0)); err != nil {
		panic("unable to add graph series")
	}
	if len(graphDelay) != 0 {
		time.Sleep(graphDelay[0])
	}
}
