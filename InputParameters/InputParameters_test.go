package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macflow/macflow/types"
)

func TestParseJSON(t *testing.T) {
	cfg := []byte(`{
		"nx": 64, "ny": 48,
		"dx": 0.02, "dy": 0.02,
		"dt": 1e-3, "nt": 500,
		"density": 1.2,
		"sampling_rate": 10,
		"folder": "out",
		"write_div": true,
		"solver": { "type": "red_black_gauss_seidel", "max_iterations": 200, "tolerance": 1e-4 },
		"solid": { "cylinder": { "x": "nx/4", "y": "ny/2", "r": "ny/8" } }
	}`)
	ip := NewSimParameters2D()
	require.NoError(t, ip.Parse(cfg))

	assert.Equal(t, 64, ip.Nx)
	assert.Equal(t, 48, ip.Ny)
	assert.Equal(t, 0.02, ip.Dx)
	assert.Equal(t, 500, ip.Nt)
	assert.Equal(t, 1.2, ip.Density)
	assert.Equal(t, 10, ip.SamplingRate)
	assert.Equal(t, "out", ip.Folder)
	assert.True(t, ip.WriteDiv)
	assert.Equal(t, "red_black_gauss_seidel", ip.Solver.Type)
	assert.Equal(t, types.RED_BLACK_GAUSS_SEIDEL, ip.SolverKind())
	assert.Equal(t, 200, ip.Solver.MaxIterations)
	assert.NotEmpty(t, ip.Solid)
}

func TestParseYAML(t *testing.T) {
	cfg := []byte(`
nx: 32
ny: 32
dt: 0.001
solver:
  type: jacobi
  tolerance: 1e-5
`)
	ip := NewSimParameters2D()
	require.NoError(t, ip.Parse(cfg))

	assert.Equal(t, 32, ip.Nx)
	assert.Equal(t, 0.001, ip.Dt)
	assert.Equal(t, types.JACOBI, ip.SolverKind())
	assert.Equal(t, 1.e-5, ip.Solver.Tolerance)
	// Nested keys absent from the file keep their defaults.
	assert.Equal(t, 1000, ip.Solver.MaxIterations)
}

func TestParseKeepsDefaults(t *testing.T) {
	ip := NewSimParameters2D()
	require.NoError(t, ip.Parse([]byte(`{"nx": 10, "ny": 10}`)))

	assert.Equal(t, 0.01, ip.Dx)
	assert.Equal(t, 1.e-4, ip.Dt)
	assert.Equal(t, 1000., ip.Density)
	assert.Equal(t, "results", ip.Folder)
	assert.Equal(t, "simulation", ip.Filename)
	assert.True(t, ip.WriteU)
	assert.True(t, ip.WriteV)
	assert.True(t, ip.WriteP)
	assert.False(t, ip.WriteSmoke)
	assert.Equal(t, 1, ip.ParallelDegree)
	assert.Equal(t, types.GAUSS_SEIDEL, ip.SolverKind())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SimParameters2D)
	}{
		{"tiny grid", func(ip *SimParameters2D) { ip.Nx = 1 }},
		{"negative nt", func(ip *SimParameters2D) { ip.Nt = -1 }},
		{"zero dx", func(ip *SimParameters2D) { ip.Dx = 0 }},
		{"negative dt", func(ip *SimParameters2D) { ip.Dt = -1 }},
		{"zero density", func(ip *SimParameters2D) { ip.Density = 0 }},
		{"no iterations", func(ip *SimParameters2D) { ip.Solver.MaxIterations = 0 }},
		{"zero tolerance", func(ip *SimParameters2D) { ip.Solver.Tolerance = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ip := NewSimParameters2D()
			c.mutate(ip)
			assert.Error(t, ip.Validate())
		})
	}
}

func TestValidateRepairsSoftErrors(t *testing.T) {
	// Recoverable misconfigurations warn and fall back instead of failing.
	ip := NewSimParameters2D()
	ip.SamplingRate = 0
	ip.Solver.Type = "multigrid"
	require.NoError(t, ip.Validate())
	assert.Equal(t, 1, ip.SamplingRate)
	assert.Equal(t, "gauss_seidel", ip.Solver.Type)
	assert.Equal(t, types.GAUSS_SEIDEL, ip.SolverKind())
}

func TestParseMalformed(t *testing.T) {
	ip := NewSimParameters2D()
	assert.Error(t, ip.Parse([]byte(`{"nx": `)))
	assert.Error(t, ip.Parse([]byte(`nx: [unclosed`)))
}
