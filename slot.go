package acorn

import "reflect"

// slot tracks which constructor parameters of a queued descriptor have
// already been satisfied by built instances.
type slot struct {
	desc  *Descriptor
	types []reflect.Type
	args  []reflect.Value
}

func newSlot(d *Descriptor) *slot {
	return &slot{
		desc:  d,
		types: d.requires,
		args:  make([]reflect.Value, len(d.requires)),
	}
}

// resolved reports whether every parameter position is filled.
func (s *slot) resolved() bool {
	for _, a := range s.args {
		if !a.IsValid() {
			return false
		}
	}
	return true
}

// offer fills the first open position whose type accepts t. A single value
// never fills more than one position.
func (s *slot) offer(t reflect.Type, v reflect.Value) bool {
	i := s.open(t)
	if i < 0 {
		return false
	}
	s.args[i] = v
	return true
}

func (s *slot) open(t reflect.Type) int {
	for i, want := range s.types {
		if !s.args[i].IsValid() && t.AssignableTo(want) {
			return i
		}
	}
	return -1
}

// missing returns the types of the positions that are still open.
func (s *slot) missing() []reflect.Type {
	var out []reflect.Type
	for i, want := range s.types {
		if !s.args[i].IsValid() {
			out = append(out, want)
		}
	}
	return out
}
