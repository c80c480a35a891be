package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macflow/macflow/MAC2D"
	"github.com/macflow/macflow/types"
)

func TestWriterLifecycle(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "p")
	require.NoError(t, err)

	g := MAC2D.NewGrid2D(3, 2)
	g.Set(1, 0, 2.5)
	require.NoError(t, w.WriteGrid2D(g))
	require.NoError(t, w.WriteGrid2D(g))
	assert.Equal(t, 2, w.StepCount())
	require.NoError(t, w.Finalise())

	for _, name := range []string{"p_0000.vti", "p_0001.vti", "p.pvd"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestWriterVTIContent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "u")
	require.NoError(t, err)

	// Distinct values reveal the x-fastest flattening in the output.
	g := MAC2D.NewGrid2D(3, 2)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			g.Set(i, j, types.Real(10*i+j))
		}
	}
	require.NoError(t, w.WriteGrid2D(g))

	data, err := os.ReadFile(filepath.Join(dir, "u_0000.vti"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `<VTKFile type="ImageData"`)
	assert.Contains(t, content, `WholeExtent="0 2 0 1 0 0"`)
	assert.Contains(t, content, `<PointData Scalars="u">`)
	assert.Contains(t, content, `Name="u"`)
	assert.Contains(t, content, types.VTKTypeName)

	// Row j=0 then row j=1, x varying fastest within each row.
	assert.Contains(t, content, "0 10 20")
	assert.Contains(t, content, "1 11 21")
}

func TestWriterPVDContent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "div")
	require.NoError(t, err)

	g := MAC2D.NewGrid2D(2, 2)
	require.NoError(t, w.WriteGrid2D(g))
	require.NoError(t, w.WriteGrid2D(g))
	require.NoError(t, w.Finalise())

	data, err := os.ReadFile(filepath.Join(dir, "div.pvd"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `<VTKFile type="Collection"`)
	assert.Contains(t, content, `timestep="0.000000" file="div_0000.vti"`)
	assert.Contains(t, content, `timestep="1.000000" file="div_0001.vti"`)
	assert.Equal(t, 2, strings.Count(content, "<DataSet"))
}

func TestWriterRejectsAfterFinalise(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "v")
	require.NoError(t, err)

	g := MAC2D.NewGrid2D(2, 2)
	require.NoError(t, w.WriteGrid2D(g))
	require.NoError(t, w.Finalise())
	require.NoError(t, w.Finalise()) // idempotent

	assert.Error(t, w.WriteGrid2D(g))
	assert.Equal(t, 1, w.StepCount())
}

func TestWriterCreatesNestedFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewWriter(dir, "p")
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
