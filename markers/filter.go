package markers

// Registry tells which marker types survive a save/restore cycle.
// Types it does not know about must be reported as not persistent.
type Registry interface {
	IsPersistent(typeName string) bool
}

// RegistryFunc adapts a function to a Registry
type RegistryFunc func(typeName string) bool

func (f RegistryFunc) IsPersistent(typeName string) bool {
	return f(typeName)
}

// Partition is the result of Filter. Keep is index aligned with the markers
// passed to Filter.
type Partition struct {
	Count int
	Keep  []bool
}

// Dropped returns the number of markers that will not be written
func (p Partition) Dropped() int {
	return len(p.Keep) - p.Count
}

// Filter determines which markers are persistent. The registry is consulted
// once per marker. A nil registry keeps nothing.
func Filter(markers []Marker, reg Registry) Partition {
	p := Partition{
		Keep: make([]bool, len(markers)),
	}
	if reg == nil {
		return p
	}
	for i, m := range markers {
		if reg.IsPersistent(m.Type) {
			p.Keep[i] = true
			p.Count++
		}
	}
	return p
}
