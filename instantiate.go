package acorn

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Instantiator builds and destroys the instance held by a single
// descriptor. It touches no state other than the descriptor it is given.
type Instantiator struct {
	log *slog.Logger
}

// NewInstantiator creates an [Instantiator].
func NewInstantiator(opts ...RuntimeOption) *Instantiator {
	o := newRuntimeOptions(opts)
	return &Instantiator{log: o.logger}
}

// CreateInstance calls the constructor of d with args in parameter order,
// stores the result and runs the init hook. The number of args must match the
// number of constructor parameters.
func (s *Instantiator) CreateInstance(d *Descriptor, args ...reflect.Value) error {
	if d.kind != KindService {
		return &LifecycleError{Phase: PhaseConstruct, Type: d.typ, Err: errors.New("not a service descriptor")}
	}
	if d.Built() {
		return fmt.Errorf("%w: %s", ErrAlreadyBuilt, d.typ)
	}
	if len(args) != len(d.requires) {
		return &LifecycleError{
			Phase: PhaseConstruct,
			Type:  d.typ,
			Err:   fmt.Errorf("constructor parameters count mismatch: want %d, got %d", len(d.requires), len(args)),
		}
	}
	for i, arg := range args {
		if !arg.IsValid() {
			return &LifecycleError{Phase: PhaseConstruct, Type: d.typ, Err: fmt.Errorf("argument %d (%s) is missing", i, d.requires[i])}
		}
	}

	out, err := call(d.constructor, args)
	if err == nil {
		err = resultError(out, 1)
	}
	if err != nil {
		return &LifecycleError{Phase: PhaseConstruct, Type: d.typ, Err: err}
	}
	d.setValue(out[0])

	if d.init != nil {
		if err := protect(func() error { return d.init(out[0]) }); err != nil {
			return &LifecycleError{Phase: PhaseInit, Type: d.typ, Err: err}
		}
	}

	s.log.Debug("instance created", d.logAttrs())
	return nil
}

// CreateProducerInstance invokes the producer method of p on the current
// instance of its owner and stores the result.
func (s *Instantiator) CreateProducerInstance(p *Descriptor) error {
	if p.kind != KindProducer {
		return &LifecycleError{Phase: PhaseProduce, Type: p.typ, Err: errors.New("not a producer descriptor")}
	}
	if p.Built() {
		return fmt.Errorf("%w: %s", ErrAlreadyBuilt, p.typ)
	}
	if p.owner == nil || !p.owner.Built() {
		return &LifecycleError{Phase: PhaseProduce, Type: p.typ, Err: ErrOwnerNotBuilt}
	}

	out, err := call(p.method, []reflect.Value{p.owner.value()})
	if err == nil {
		err = resultError(out, 1)
	}
	if err != nil {
		return &LifecycleError{Phase: PhaseProduce, Type: p.typ, Err: err}
	}
	p.setValue(out[0])

	s.log.Debug("producer invoked", p.logAttrs(), slog.String("owner", p.owner.typ.String()))
	return nil
}

// DestroyInstance runs the destroy hook of d, if any, and clears the
// instance. The instance is cleared even when the hook fails.
func (s *Instantiator) DestroyInstance(d *Descriptor) error {
	var err error
	if inst := d.value(); d.destroy != nil && inst.IsValid() {
		err = protect(func() error { return d.destroy(inst) })
	}
	d.setValue(reflect.Value{})

	if err != nil {
		return &LifecycleError{Phase: PhaseDestroy, Type: d.typ, Err: err}
	}
	s.log.Debug("instance destroyed", d.logAttrs())
	return nil
}

// call invokes fn and converts a panic into an error.
func call(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn.Call(args), nil
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn()
}

func panicError(r any) error {
	if e, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", e)
	}
	return fmt.Errorf("panic: %v", r)
}

// resultError returns the error at out[idx], if the function returned one.
func resultError(out []reflect.Value, idx int) error {
	if len(out) <= idx {
		return nil
	}
	v := out[idx]
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface().(error)
}
