// Package output writes scalar grids as VTK ImageData (.vti) files plus a
// ParaView collection (.pvd) index per field. Files are ASCII so runs can be
// inspected with any text tool.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/macflow/macflow/MAC2D"
	"github.com/macflow/macflow/types"
)

type pvdEntry struct {
	time     float64
	filename string
}

// Writer emits one field's snapshot series into a directory and keeps the
// collection index in memory until Finalise.
type Writer struct {
	dir       string
	baseName  string
	step      int
	entries   []pvdEntry
	finalised bool
}

// NewWriter creates the output directory if needed. baseName names both the
// per-step files (baseName_0000.vti) and the collection (baseName.pvd).
func NewWriter(dir, baseName string) (w *Writer, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory %s: %w", dir, err)
	}
	w = &Writer{
		dir:      dir,
		baseName: baseName,
	}
	return
}

func (w *Writer) formatFilename(step int) string {
	return fmt.Sprintf("%s_%04d.vti", w.baseName, step)
}

// WriteGrid2D writes one snapshot of g and appends it to the collection.
// The snapshot index advances on every successful write.
func (w *Writer) WriteGrid2D(g *MAC2D.Grid2D) error {
	if w.finalised {
		return fmt.Errorf("writer %s already finalised", w.baseName)
	}
	name := w.formatFilename(w.step)
	if err := w.writeVTI(g, name); err != nil {
		return err
	}
	w.entries = append(w.entries, pvdEntry{
		time:     float64(w.step),
		filename: name,
	})
	w.step++
	return nil
}

func (w *Writer) writeVTI(g *MAC2D.Grid2D, name string) error {
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	var (
		out    = bufio.NewWriter(file)
		nx, ny = g.Nx, g.Ny
	)
	fmt.Fprintf(out, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(out, "<VTKFile type=\"ImageData\" version=\"0.1\" byte_order=\"LittleEndian\">\n")
	fmt.Fprintf(out, "  <ImageData WholeExtent=\"0 %d 0 %d 0 0\" Origin=\"0.0 0.0 0.0\" Spacing=\"1.0 1.0 1.0\">\n",
		nx-1, ny-1)
	fmt.Fprintf(out, "    <Piece Extent=\"0 %d 0 %d 0 0\">\n", nx-1, ny-1)
	fmt.Fprintf(out, "      <PointData Scalars=%q>\n", w.baseName)
	fmt.Fprintf(out, "        <DataArray type=%q Name=%q NumberOfComponents=\"1\" format=\"ascii\">\n",
		types.VTKTypeName, w.baseName)
	fmt.Fprintf(out, "          ")

	// VTI expects x-fastest ordering, so y is the outer loop.
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			fmt.Fprintf(out, "%.10g", float64(g.Get(i, j)))
			if i+1 < nx || j+1 < ny {
				fmt.Fprintf(out, " ")
			}
		}
		fmt.Fprintf(out, "\n          ")
	}

	fmt.Fprintf(out, "\n        </DataArray>\n")
	fmt.Fprintf(out, "      </PointData>\n")
	fmt.Fprintf(out, "    </Piece>\n")
	fmt.Fprintf(out, "  </ImageData>\n")
	fmt.Fprintf(out, "</VTKFile>\n")

	if err = out.Flush(); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}

// Finalise writes the PVD collection index. Further writes are rejected.
// Calling it twice is harmless.
func (w *Writer) Finalise() error {
	if w.finalised {
		return nil
	}
	path := filepath.Join(w.dir, w.baseName+".pvd")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	fmt.Fprintf(out, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(out, "<VTKFile type=\"Collection\" version=\"0.1\" byte_order=\"LittleEndian\">\n")
	fmt.Fprintf(out, "  <Collection>\n")
	for _, entry := range w.entries {
		fmt.Fprintf(out, "      <DataSet timestep=\"%.6f\" file=%q/>\n", entry.time, entry.filename)
	}
	fmt.Fprintf(out, "  </Collection>\n")
	fmt.Fprintf(out, "</VTKFile>\n")

	if err = out.Flush(); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	w.finalised = true
	return nil
}

// StepCount returns how many snapshots have been written so far.
func (w *Writer) StepCount() int {
	return w.step
}
