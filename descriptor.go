package acorn

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	closerType = reflect.TypeOf((*io.Closer)(nil)).Elem()
)

// hook is a resolved lifecycle callback bound to a descriptor's type.
type hook func(instance reflect.Value) error

// producerSpec is a producer method that has not been materialized yet.
type producerSpec struct {
	fn     reflect.Value
	out    reflect.Type
	marker Marker
}

// Descriptor holds the static metadata and the runtime state of one
// container-managed value. Descriptors are created once by [Describe] and
// mutated only by the [Engine] during resolution and by the [Container]
// during reload. The runtime accessors are safe to call while another
// goroutine reloads.
type Descriptor struct {
	id     uuid.UUID
	kind   Kind
	typ    reflect.Type
	marker Marker

	// service
	constructor reflect.Value
	requires    []reflect.Type
	init        hook
	destroy     hook
	producers   []producerSpec

	// producer
	method reflect.Value
	owner  *Descriptor

	// mu guards the runtime state below.
	mu         sync.RWMutex
	instance   reflect.Value
	dependents []*Descriptor
}

// Describe maps a constructor to a service descriptor. The constructor must
// be a function with the signature func(deps...) T or func(deps...) (T, error).
// Its parameters are the required dependency types, resolved by
// assignability.
func Describe(constructor any, opts ...Option) (*Descriptor, error) {
	if constructor == nil {
		return nil, errors.New("constructor must be a function")
	}
	val := reflect.ValueOf(constructor)
	typ := val.Type()

	if typ.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}
	if err := checkResults(typ); err != nil {
		return nil, fmt.Errorf("constructor %s: %w", typ, err)
	}
	if typ.IsVariadic() {
		return nil, fmt.Errorf("constructor %s: variadic constructors are not supported", typ)
	}

	o := describeOptions{marker: ServiceMarker}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Descriptor{
		id:          uuid.New(),
		kind:        KindService,
		typ:         typ.Out(0),
		marker:      o.marker,
		constructor: val,
		requires:    make([]reflect.Type, typ.NumIn()),
	}
	for i := range d.requires {
		d.requires[i] = typ.In(i)
	}

	var err error
	if o.init != nil {
		if d.init, err = makeHook(o.init, d.typ); err != nil {
			return nil, fmt.Errorf("init hook for %s: %w", d.typ, err)
		}
	}
	if o.destroy != nil {
		if d.destroy, err = makeHook(o.destroy, d.typ); err != nil {
			return nil, fmt.Errorf("destroy hook for %s: %w", d.typ, err)
		}
	} else if d.typ.Implements(closerType) {
		d.destroy = closeHook
	}

	for _, p := range o.producers {
		spec, err := makeProducer(p, d.typ)
		if err != nil {
			return nil, fmt.Errorf("producer for %s: %w", d.typ, err)
		}
		d.producers = append(d.producers, spec)
	}

	return d, nil
}

// MustDescribe is like [Describe] but panics on error.
func MustDescribe(constructor any, opts ...Option) *Descriptor {
	d, err := Describe(constructor, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// SelectConstructor picks one constructor out of several candidates for the
// same type: the one with the fewest parameters wins, ties go to the
// earliest candidate.
func SelectConstructor(candidates ...any) (any, error) {
	best := -1
	bestIn := 0
	for i, c := range candidates {
		if c == nil {
			return nil, fmt.Errorf("candidate %d: constructor must be a function", i)
		}
		typ := reflect.TypeOf(c)
		if typ.Kind() != reflect.Func {
			return nil, fmt.Errorf("candidate %d: constructor must be a function", i)
		}
		if best < 0 || typ.NumIn() < bestIn {
			best, bestIn = i, typ.NumIn()
		}
	}
	if best < 0 {
		return nil, errors.New("no constructor candidates")
	}
	return candidates[best], nil
}

func newProducerDescriptor(owner *Descriptor, spec producerSpec) *Descriptor {
	return &Descriptor{
		id:     uuid.New(),
		kind:   KindProducer,
		typ:    spec.out,
		marker: spec.marker,
		method: spec.fn,
		owner:  owner,
	}
}

// ID returns the stable identity key of the descriptor.
func (d *Descriptor) ID() uuid.UUID { return d.id }

// Kind reports whether d is a service or a producer descriptor.
func (d *Descriptor) Kind() Kind { return d.kind }

// Type returns the declared type of the managed value.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Marker returns the marker d was described with.
func (d *Descriptor) Marker() Marker { return d.marker }

// Requires returns the constructor parameter types in order. Producers
// require nothing.
func (d *Descriptor) Requires() []reflect.Type {
	out := make([]reflect.Type, len(d.requires))
	copy(out, d.requires)
	return out
}

// ProducerTypes returns the result types of d's producer methods.
func (d *Descriptor) ProducerTypes() []reflect.Type {
	out := make([]reflect.Type, len(d.producers))
	for i, p := range d.producers {
		out[i] = p.out
	}
	return out
}

// Owner returns the service a producer descriptor belongs to, or nil.
func (d *Descriptor) Owner() *Descriptor { return d.owner }

// Instance returns the live value, or nil when d is not built.
func (d *Descriptor) Instance() any {
	v := d.value()
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// Built reports whether d currently holds an instance.
func (d *Descriptor) Built() bool { return d.value().IsValid() }

// Dependents returns the descriptors recorded as consumers of d, in the
// order they were built.
func (d *Descriptor) Dependents() []*Descriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Descriptor, len(d.dependents))
	copy(out, d.dependents)
	return out
}

// HasInit reports whether an init hook is configured.
func (d *Descriptor) HasInit() bool { return d.init != nil }

// HasDestroy reports whether a destroy hook is configured.
func (d *Descriptor) HasDestroy() bool { return d.destroy != nil }

func (d *Descriptor) String() string {
	return d.kind.String() + " " + d.typ.String()
}

func (d *Descriptor) value() reflect.Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.instance
}

func (d *Descriptor) setValue(v reflect.Value) {
	d.mu.Lock()
	d.instance = v
	d.mu.Unlock()
}

func (d *Descriptor) addDependent(dep *Descriptor) {
	d.mu.Lock()
	d.dependents = append(d.dependents, dep)
	d.mu.Unlock()
}

func (d *Descriptor) clearDependents() {
	d.mu.Lock()
	d.dependents = nil
	d.mu.Unlock()
}

func (d *Descriptor) logAttrs() slog.Attr {
	return slog.Group("descriptor",
		slog.String("type", d.typ.String()),
		slog.String("id", d.id.String()),
		slog.String("kind", d.kind.String()),
		slog.String("marker", string(d.marker)),
	)
}

// checkResults validates the (T) or (T, error) result shape shared by
// constructors and producers.
func checkResults(typ reflect.Type) error {
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return errors.New("must return (T) or (T, error)")
	}
	if typ.NumOut() == 2 && !typ.Out(1).Implements(errorType) {
		return errors.New("second return value must implement error")
	}
	return nil
}

// checkReceiver validates that fn takes exactly one argument that accepts
// target, so it can be called on the instance.
func checkReceiver(fnType, target reflect.Type) error {
	if fnType.Kind() != reflect.Func {
		return errors.New("must be a function")
	}
	if fnType.NumIn() != 1 || fnType.IsVariadic() {
		return fmt.Errorf("%s must take exactly the instance as argument", fnType)
	}
	if !target.AssignableTo(fnType.In(0)) {
		return fmt.Errorf("%s cannot be called on %s", fnType, target)
	}
	return nil
}

func makeHook(fn any, target reflect.Type) (hook, error) {
	val := reflect.ValueOf(fn)
	typ := val.Type()
	if err := checkReceiver(typ, target); err != nil {
		return nil, err
	}
	switch {
	case typ.NumOut() == 0:
	case typ.NumOut() == 1 && typ.Out(0).Implements(errorType):
	default:
		return nil, fmt.Errorf("%s must return nothing or an error", typ)
	}

	return func(instance reflect.Value) error {
		out, err := call(val, []reflect.Value{instance})
		if err != nil {
			return err
		}
		return resultError(out, 0)
	}, nil
}

func makeProducer(p producerOptions, target reflect.Type) (producerSpec, error) {
	if p.fn == nil {
		return producerSpec{}, errors.New("must be a function")
	}
	val := reflect.ValueOf(p.fn)
	typ := val.Type()
	if err := checkReceiver(typ, target); err != nil {
		return producerSpec{}, err
	}
	if err := checkResults(typ); err != nil {
		return producerSpec{}, fmt.Errorf("%s %w", typ, err)
	}
	return producerSpec{fn: val, out: typ.Out(0), marker: p.marker}, nil
}

func closeHook(instance reflect.Value) error {
	closer, ok := instance.Interface().(io.Closer)
	if !ok {
		return nil
	}
	return closer.Close()
}
