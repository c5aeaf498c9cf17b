package acorn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Container is the registry of built descriptors. It is initialized exactly
// once with the output of [Engine.InstantiateAll] and then serves lookups and
// reloads. All methods are safe for concurrent use.
type Container struct {
	mu sync.RWMutex

	// registry keeps construction order; lookups are first-match over it.
	registry []*Descriptor
	byID     map[uuid.UUID]*Descriptor

	inst *Instantiator
	log  *slog.Logger

	initialized bool
	shutdown    bool
}

// NewContainer creates an empty, uninitialized [Container].
func NewContainer(opts ...RuntimeOption) *Container {
	o := newRuntimeOptions(opts)
	return &Container{
		byID: make(map[uuid.UUID]*Descriptor),
		log:  o.logger,
	}
}

// Init fills the registry with built descriptors and keeps inst for later
// reloads. It fails with [ErrAlreadyInitialized] on every call after the
// first, leaving the registry untouched.
func (c *Container) Init(built []*Descriptor, inst *Instantiator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}
	if inst == nil {
		inst = NewInstantiator(WithLogger(c.log))
	}

	for _, d := range built {
		if d == nil {
			return errors.New("nil descriptor")
		}
	}
	c.registry = append(c.registry, built...)
	for _, d := range built {
		c.byID[d.id] = d
	}
	c.inst = inst
	c.initialized = true

	c.log.Info("container initialized", slog.Int("services", len(c.registry)))
	return nil
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// Service returns the instance of the first registered descriptor whose type
// is assignable to t. A missing service is not an error.
func (c *Container) Service(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := c.details(t)
	if d == nil {
		return nil, false
	}
	return d.Instance(), true
}

// Details returns the first registered descriptor whose type is assignable
// to t.
func (c *Container) Details(t reflect.Type) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := c.details(t)
	return d, d != nil
}

// Lookup returns the descriptor with the given identity key.
func (c *Container) Lookup(id uuid.UUID) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.byID[id]
	return d, ok
}

// ByMarker returns the descriptors carrying exactly marker m, in registry
// order.
func (c *Container) ByMarker(m Marker) []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*Descriptor
	for _, d := range c.registry {
		if d.marker == m {
			out = append(out, d)
		}
	}
	return out
}

// Services returns a snapshot of all live instances in registry order.
func (c *Container) Services() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]any, len(c.registry))
	for i, d := range c.registry {
		out[i] = d.Instance()
	}
	return out
}

// ServicesDetails returns a snapshot of all registered descriptors.
func (c *Container) ServicesDetails() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Descriptor, len(c.registry))
	copy(out, c.registry)
	return out
}

func (c *Container) details(t reflect.Type) *Descriptor {
	for _, d := range c.registry {
		if d.typ.AssignableTo(t) {
			return d
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reload
// ---------------------------------------------------------------------------

// Reload destroys the instance held by d and builds a new one from the
// instances currently registered for its parameter types. With cascade set,
// every recorded dependent of d is reloaded the same way, recursively.
//
// If a destroy hook fails the rebuild still happens and both outcomes are
// reported together.
//
// Constructors and hooks run while the container's write lock is held, so
// they must not call back into c. Reading a [Descriptor] they already hold
// is fine.
func (c *Container) Reload(d *Descriptor, cascade bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLive(); err != nil {
		return err
	}
	if d == nil || c.byID[d.id] != d {
		return ErrServiceNotFound
	}
	return c.reload(d, cascade)
}

// ReloadInstance reloads the descriptor holding instance, without cascading,
// and returns the new instance.
func (c *Container) ReloadInstance(instance any) (any, error) {
	return c.ReloadInstanceCascade(instance, false)
}

// ReloadInstanceCascade reloads the descriptor holding instance and returns
// the new instance. Reference types are matched by identity, other values by
// equality.
func (c *Container) ReloadInstanceCascade(instance any, cascade bool) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLive(); err != nil {
		return nil, err
	}

	for _, d := range c.registry {
		if d.Built() && SameInstance(d.Instance(), instance) {
			if err := c.reload(d, cascade); err != nil {
				return nil, err
			}
			return d.Instance(), nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrServiceNotFound, instance)
}

func (c *Container) reload(d *Descriptor, cascade bool) error {
	var errs []error
	if err := c.inst.DestroyInstance(d); err != nil {
		errs = append(errs, err)
	}
	if err := c.rebuild(d); err != nil {
		return errors.Join(append(errs, err)...)
	}
	c.log.Info("service reloaded", d.logAttrs(), slog.Bool("cascade", cascade))

	if cascade {
		for _, dep := range d.Dependents() {
			if err := c.reload(dep, true); err != nil {
				return errors.Join(append(errs, err)...)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Container) rebuild(d *Descriptor) error {
	if d.kind == KindProducer {
		return c.inst.CreateProducerInstance(d)
	}

	args := make([]reflect.Value, len(d.requires))
	for i, t := range d.requires {
		dep := c.details(t)
		if dep == nil || !dep.Built() {
			return &LifecycleError{Phase: PhaseConstruct, Type: d.typ, Err: fmt.Errorf("%w: %s", ErrServiceNotFound, t)}
		}
		args[i] = dep.value()
	}
	return c.inst.CreateInstance(d, args...)
}

func (c *Container) checkLive() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if c.shutdown {
		return ErrAlreadyShutdown
	}
	return nil
}

// ---------------------------------------------------------------------------
// Shutdown
// ---------------------------------------------------------------------------

// Shutdown destroys every built instance in reverse construction order, so
// dependents go before their dependencies. The context bounds the whole
// operation; once it is done the remaining instances are skipped and the
// context error is part of the result.
//
// Subsequent calls return [ErrAlreadyShutdown].
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLive(); err != nil {
		return err
	}
	c.shutdown = true

	var errs []error
	for i := len(c.registry) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		d := c.registry[i]
		if !d.Built() {
			continue
		}
		if err := c.inst.DestroyInstance(d); err != nil {
			errs = append(errs, err)
		}
	}

	c.log.Info("container shut down", slog.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Get is a generic helper that looks up a service by type:
//
//	db, ok := acorn.Get[*Database](c)
func Get[T any](c *Container) (T, bool) {
	var zero T
	v, ok := c.Service(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustGet is like [Get] but panics when the service is missing.
func MustGet[T any](c *Container) T {
	out, ok := Get[T](c)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrServiceNotFound, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return out
}

// DetailsOf is a generic helper around [Container.Details].
func DetailsOf[T any](c *Container) (*Descriptor, bool) {
	return c.Details(reflect.TypeOf((*T)(nil)).Elem())
}

// Reload is a generic helper around [Container.ReloadInstanceCascade]:
//
//	repo, err = acorn.Reload(c, repo, true)
func Reload[T any](c *Container, instance T, cascade bool) (T, error) {
	var zero T
	v, err := c.ReloadInstanceCascade(instance, cascade)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %T to %s", v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return out, nil
}

// SameInstance reports whether a and b are the same managed instance.
// Reference types are compared by identity and everything else by value.
// Pointers to zero-size values may share one address, so instances of such
// types cannot be told apart.
func SameInstance(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
