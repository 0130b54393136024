package strategies

import "fmt"

// Param declares one numeric strategy parameter: its name, default value
// and inclusive bounds.
type Param struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
}

// Values holds caller-supplied parameter values keyed by name.
type Values map[string]float64

// resolveParams merges caller values over schema defaults, rejecting
// unknown names and out-of-bounds values.
func resolveParams(schema []Param, v Values) (Values, error) {
	known := make(map[string]Param, len(schema))
	resolved := make(Values, len(schema))
	for _, p := range schema {
		known[p.Name] = p
		resolved[p.Name] = p.Default
	}

	for name, val := range v {
		p, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		if val < p.Min || val > p.Max {
			return nil, fmt.Errorf("parameter %q = %v out of range [%v, %v]",
				name, val, p.Min, p.Max)
		}
		resolved[name] = val
	}
	return resolved, nil
}
