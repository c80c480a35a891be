// Package scene builds initial-condition primitives from the raw config
// subtrees and applies them once to the simulation fields. Objects carry no
// runtime state and are discarded as soon as Apply returns.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/macflow/macflow/InputParameters"
	"github.com/macflow/macflow/MAC2D"
	"github.com/macflow/macflow/types"
	"github.com/macflow/macflow/utils"
)

// Object is one initial-condition primitive. The no-op defaults on baseObject
// let each primitive implement only the operations it supports.
type Object interface {
	ApplySolid(f *MAC2D.Fields2D)
	ApplyVelocityU(f *MAC2D.Fields2D)
	ApplyVelocityV(f *MAC2D.Fields2D)
	ApplySmoke(f *MAC2D.Fields2D)
}

type baseObject struct{}

func (baseObject) ApplySolid(*MAC2D.Fields2D)     {}
func (baseObject) ApplyVelocityU(*MAC2D.Fields2D) {}
func (baseObject) ApplyVelocityV(*MAC2D.Fields2D) {}
func (baseObject) ApplySmoke(*MAC2D.Fields2D)     {}

// Rectangle covers the inclusive cell-index range [x1,x2] x [y1,y2].
// It supports solid labelling, velocity patches and smoke seeding.
type Rectangle struct {
	baseObject
	Val            types.Real
	X1, Y1, X2, Y2 int
}

func (r *Rectangle) ApplySolid(f *MAC2D.Fields2D) {
	iMax, jMax := utils.Min(r.X2, f.Nx-1), utils.Min(r.Y2, f.Ny-1)
	for i := utils.Max(r.X1, 0); i <= iMax; i++ {
		for j := utils.Max(r.Y1, 0); j <= jMax; j++ {
			f.SetLabel(i, j, types.SOLID)
		}
	}
}

func (r *Rectangle) ApplyVelocityU(f *MAC2D.Fields2D) {
	iMax, jMax := utils.Min(r.X2, f.U.Nx-1), utils.Min(r.Y2, f.U.Ny-1)
	for i := utils.Max(r.X1, 0); i <= iMax; i++ {
		for j := utils.Max(r.Y1, 0); j <= jMax; j++ {
			f.U.Set(i, j, r.Val)
		}
	}
}

func (r *Rectangle) ApplyVelocityV(f *MAC2D.Fields2D) {
	iMax, jMax := utils.Min(r.X2, f.V.Nx-1), utils.Min(r.Y2, f.V.Ny-1)
	for i := utils.Max(r.X1, 0); i <= iMax; i++ {
		for j := utils.Max(r.Y1, 0); j <= jMax; j++ {
			f.V.Set(i, j, r.Val)
		}
	}
}

func (r *Rectangle) ApplySmoke(f *MAC2D.Fields2D) {
	iMax, jMax := utils.Min(r.X2, f.Smoke.Nx-1), utils.Min(r.Y2, f.Smoke.Ny-1)
	for i := utils.Max(r.X1, 0); i <= iMax; i++ {
		for j := utils.Max(r.Y1, 0); j <= jMax; j++ {
			f.Smoke.Set(i, j, r.Val)
		}
	}
}

// Cylinder is a filled disc centred on cell (Cx, Cy) with radius R in cells.
// Solid labelling only.
type Cylinder struct {
	baseObject
	Cx, Cy, R int
}

func (c *Cylinder) ApplySolid(f *MAC2D.Fields2D) {
	f.SolidCylinder(c.Cx, c.Cy, c.R)
}

// ResolveInt evaluates a config coordinate: either a bare integer or a
// string expression over signed integers and the names in vars, with the
// operators + - * / applied left to right. Variable names are substituted
// longest-first so "nx" cannot clobber a longer name that contains it.
func ResolveInt(val json.RawMessage, vars map[string]int) (int, error) {
	var n int
	if err := json.Unmarshal(val, &n); err == nil {
		return n, nil
	}
	var expr string
	if err := json.Unmarshal(val, &expr); err != nil {
		return 0, fmt.Errorf("expected int or string expression, got %s", string(val))
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		expr = strings.ReplaceAll(expr, name, strconv.Itoa(vars[name]))
	}

	return evalExpr(expr)
}

func evalExpr(expr string) (int, error) {
	pos := skipSpaces(expr, 0)
	if pos >= len(expr) {
		return 0, fmt.Errorf("empty expression after substitution")
	}
	result, pos, err := parseNumber(expr, pos)
	if err != nil {
		return 0, err
	}
	pos = skipSpaces(expr, pos)

	for pos < len(expr) {
		op := expr[pos]
		pos = skipSpaces(expr, pos+1)
		var operand int
		operand, pos, err = parseNumber(expr, pos)
		if err != nil {
			return 0, err
		}
		pos = skipSpaces(expr, pos)

		switch op {
		case '+':
			result += operand
		case '-':
			result -= operand
		case '*':
			result *= operand
		case '/':
			if operand == 0 {
				return 0, fmt.Errorf("division by zero in %q", expr)
			}
			result /= operand
		default:
			return 0, fmt.Errorf("unknown operator %q in %q", string(op), expr)
		}
	}
	return result, nil
}

func skipSpaces(expr string, pos int) int {
	for pos < len(expr) && (expr[pos] == ' ' || expr[pos] == '\t') {
		pos++
	}
	return pos
}

func parseNumber(expr string, pos int) (val, next int, err error) {
	start := pos
	if pos < len(expr) && (expr[pos] == '+' || expr[pos] == '-') {
		pos++
	}
	for pos < len(expr) && expr[pos] >= '0' && expr[pos] <= '9' {
		pos++
	}
	if pos == start || (pos == start+1 && !(expr[start] >= '0' && expr[start] <= '9')) {
		return 0, pos, fmt.Errorf("expected integer at %q", expr[start:])
	}
	val, err = strconv.Atoi(expr[start:pos])
	return val, pos, err
}

type rawObject map[string]json.RawMessage

func makeObject(kind string, node rawObject, vars map[string]int) (Object, error) {
	get := func(key string, dst *int) error {
		raw, ok := node[key]
		if !ok {
			return nil
		}
		v, err := ResolveInt(raw, vars)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", kind, key, err)
		}
		*dst = v
		return nil
	}

	switch kind {
	case "rectangle":
		obj := &Rectangle{}
		if raw, ok := node["val"]; ok {
			var val float64
			if err := json.Unmarshal(raw, &val); err != nil {
				return nil, fmt.Errorf("rectangle.val: %w", err)
			}
			obj.Val = types.Real(val)
		}
		for key, dst := range map[string]*int{
			"x1": &obj.X1, "y1": &obj.Y1, "x2": &obj.X2, "y2": &obj.Y2,
		} {
			if err := get(key, dst); err != nil {
				return nil, err
			}
		}
		return obj, nil
	case "cylinder":
		obj := &Cylinder{}
		for key, dst := range map[string]*int{
			"x": &obj.Cx, "y": &obj.Cy, "r": &obj.R,
		} {
			if err := get(key, dst); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	fmt.Fprintf(os.Stderr, "unknown scene object type %q, ignored\n", kind)
	return nil, nil
}

// ParseObjects reads a scene node, a JSON object whose keys are primitive
// type names and whose values are one primitive or an array of primitives.
func ParseObjects(node json.RawMessage, vars map[string]int) (objs []Object, err error) {
	if len(node) == 0 || string(node) == "null" {
		return nil, nil
	}
	var byType map[string]json.RawMessage
	if err = json.Unmarshal(node, &byType); err != nil {
		return nil, fmt.Errorf("scene node must be an object: %w", err)
	}

	kinds := make([]string, 0, len(byType))
	for kind := range byType {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		value := byType[kind]
		var entries []rawObject
		var single rawObject
		if jsonErr := json.Unmarshal(value, &entries); jsonErr == nil {
			// array of primitives
		} else if jsonErr = json.Unmarshal(value, &single); jsonErr == nil {
			entries = []rawObject{single}
		} else {
			fmt.Fprintf(os.Stderr, "scene value for %q must be an object or array, ignored\n", kind)
			continue
		}
		for _, entry := range entries {
			obj, makeErr := makeObject(kind, entry, vars)
			if makeErr != nil {
				return nil, makeErr
			}
			if obj != nil {
				objs = append(objs, obj)
			}
		}
	}
	return objs, nil
}

// Apply materialises the scene subtrees held by the parameters and applies
// them to the fields in a fixed order: u patches, v patches, solids, smoke.
func Apply(ip *InputParameters.SimParameters2D, f *MAC2D.Fields2D) error {
	vars := map[string]int{"nx": ip.Nx, "ny": ip.Ny}

	apply := func(node json.RawMessage, op func(Object)) error {
		objs, err := ParseObjects(node, vars)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			op(obj)
		}
		return nil
	}

	if err := apply(ip.VelocityU, func(o Object) { o.ApplyVelocityU(f) }); err != nil {
		return err
	}
	if err := apply(ip.VelocityV, func(o Object) { o.ApplyVelocityV(f) }); err != nil {
		return err
	}
	if err := apply(ip.Solid, func(o Object) { o.ApplySolid(f) }); err != nil {
		return err
	}
	return apply(ip.Smoke, func(o Object) { o.ApplySmoke(f) })
}
