package fbx

// Element is one record of the FBX node tree as stored on disk, before any
// object/connection resolution. Props hold decoded property values:
// int16, bool, int32, int64, float32, float64, string, []byte and the
// array types []bool, []int32, []int64, []float32, []float64.
type Element struct {
	Name     string
	Props    []any
	Children []*Element
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name, in file order.
func (e *Element) ChildrenNamed(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// String returns property i as a string, or "" if absent or not a string.
func (e *Element) String(i int) string {
	if e == nil || i >= len(e.Props) {
		return ""
	}
	switch v := e.Props[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// Int64 returns property i as an integer.
func (e *Element) Int64(i int) (int64, bool) {
	if e == nil || i >= len(e.Props) {
		return 0, false
	}
	switch v := e.Props[i].(type) {
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	}
	return 0, false
}

// Float64 returns property i as a float.
func (e *Element) Float64(i int) (float64, bool) {
	if e == nil || i >= len(e.Props) {
		return 0, false
	}
	switch v := e.Props[i].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Float64s returns the first property as a float slice, widening any numeric
// array type. ASCII files store integral arrays as []int64.
func (e *Element) Float64s() []float64 {
	if e == nil || len(e.Props) == 0 {
		return nil
	}
	switch v := e.Props[0].(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	case []int64:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out
	case []int32:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out
	}
	return e.scalarFloats()
}

// scalarFloats handles pre-7.x ASCII arrays written as a plain value list.
func (e *Element) scalarFloats() []float64 {
	out := make([]float64, 0, len(e.Props))
	for i := range e.Props {
		f, ok := e.Float64(i)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

// Ints returns the first property as an int slice.
func (e *Element) Ints() []int {
	if e == nil || len(e.Props) == 0 {
		return nil
	}
	switch v := e.Props[0].(type) {
	case []int32:
		out := make([]int, len(v))
		for i, n := range v {
			out[i] = int(n)
		}
		return out
	case []int64:
		out := make([]int, len(v))
		for i, n := range v {
			out[i] = int(n)
		}
		return out
	case []float64:
		out := make([]int, len(v))
		for i, f := range v {
			out[i] = int(f)
		}
		return out
	}
	fs := e.scalarFloats()
	if fs == nil {
		return nil
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out
}
