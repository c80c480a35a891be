//go:build !f32

package types

// Real is the working floating-point precision for all fields and grids.
// Build with -tags f32 to switch the whole simulation to 32-bit.
type Real = float64

const (
	RealEpsilon     = 1.e-15
	PrecisionString = "double (64-bit)"
	// VTKTypeName is the DataArray type tag matching Real.
	VTKTypeName = "Float64"
)
