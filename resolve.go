package acorn

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Engine resolves a set of service descriptors into built instances. It
// makes no attempt to order the input up front: descriptors wait in a queue
// until every constructor parameter has been satisfied by an instance built
// earlier in the same run.
type Engine struct {
	cfg  Config
	inst *Instantiator
	log  *slog.Logger
}

// NewEngine creates an [Engine]. A nil instantiator is replaced by a default
// one sharing the engine's logger.
func NewEngine(cfg Config, inst *Instantiator, opts ...RuntimeOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newRuntimeOptions(opts)
	if inst == nil {
		inst = NewInstantiator(opts...)
	}
	return &Engine{cfg: cfg, inst: inst, log: o.logger}, nil
}

// Instantiator returns the instantiation service used by e.
func (e *Engine) Instantiator() *Instantiator { return e.inst }

// resolution is the state of a single InstantiateAll run.
type resolution struct {
	queue      []*slot
	known      []reflect.Type
	built      []*Descriptor
	iterations int
}

// InstantiateAll builds every descriptor in descs and the producers they
// declare. The result lists services and producers in construction order.
//
// A failed run is not rolled back: descriptors built before the failure keep
// their instances. Call [Engine.Reset] before retrying with the same
// descriptors.
func (e *Engine) InstantiateAll(descs []*Descriptor) ([]*Descriptor, error) {
	r, err := e.seed(descs)
	if err != nil {
		return nil, err
	}
	if err := r.checkMissing(); err != nil {
		return nil, err
	}

	for len(r.queue) > 0 {
		if r.iterations > e.cfg.MaxIterations {
			err := r.exhausted(e.cfg.MaxIterations)
			e.log.Error("resolution exhausted", slog.Int("iterations", r.iterations), slog.Int("pending", len(r.queue)))
			return nil, err
		}

		s := r.queue[0]
		r.queue = r.queue[1:]

		if !s.resolved() {
			r.queue = append(r.queue, s)
			r.iterations++
			continue
		}

		if err := e.inst.CreateInstance(s.desc, s.args...); err != nil {
			return nil, err
		}
		r.register(s.desc)

		for _, spec := range s.desc.producers {
			p := newProducerDescriptor(s.desc, spec)
			if err := e.inst.CreateProducerInstance(p); err != nil {
				return nil, err
			}
			r.register(p)
		}
	}

	e.log.Info("resolution complete", slog.Int("built", len(r.built)), slog.Int("iterations", r.iterations))
	return r.built, nil
}

// Reset destroys the instances held by descs and clears their recorded
// dependents, so they can go through InstantiateAll again. Destroy hook
// failures are collected and returned together.
func (e *Engine) Reset(descs []*Descriptor) error {
	var errs []error
	for i := len(descs) - 1; i >= 0; i-- {
		d := descs[i]
		if d.Built() {
			if err := e.inst.DestroyInstance(d); err != nil {
				errs = append(errs, err)
			}
		}
		d.clearDependents()
	}
	return errors.Join(errs...)
}

func (e *Engine) seed(descs []*Descriptor) (*resolution, error) {
	r := &resolution{
		queue: make([]*slot, 0, len(descs)),
		built: make([]*Descriptor, 0, len(descs)),
	}
	seen := make(map[reflect.Type]bool, len(descs))

	for _, d := range descs {
		if d == nil {
			return nil, errors.New("nil descriptor")
		}
		if d.kind != KindService {
			return nil, fmt.Errorf("%s: producer descriptors are materialized from their owner", d)
		}
		if d.Built() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyBuilt, d.typ)
		}
		if seen[d.typ] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateService, d.typ)
		}
		seen[d.typ] = true

		r.queue = append(r.queue, newSlot(d))
		r.known = append(r.known, d.typ)
		r.known = append(r.known, d.ProducerTypes()...)
	}
	return r, nil
}

// checkMissing fails when a required type has no candidate at all. It does
// not detect cycles.
func (r *resolution) checkMissing() error {
	for _, s := range r.queue {
		for _, want := range s.types {
			if !r.isKnown(want) {
				return &UnsatisfiedDependencyError{Required: want, Requester: s.desc.typ}
			}
		}
	}
	return nil
}

func (r *resolution) isKnown(want reflect.Type) bool {
	for _, t := range r.known {
		if t.AssignableTo(want) {
			return true
		}
	}
	return false
}

// register records d as built and offers its instance to every queued slot.
func (r *resolution) register(d *Descriptor) {
	if d.kind == KindService {
		r.recordDependents(d)
	}
	r.built = append(r.built, d)

	for _, s := range r.queue {
		s.offer(d.typ, d.value())
	}
}

// recordDependents appends d to the dependents of every already built
// descriptor whose type satisfies one of d's parameters. The edge points from
// provider to consumer and is only ever recorded when the consumer is built.
func (r *resolution) recordDependents(d *Descriptor) {
	for _, want := range d.requires {
		for _, b := range r.built {
			if b.typ.AssignableTo(want) {
				b.addDependent(d)
			}
		}
	}
}

func (r *resolution) exhausted(limit int) error {
	pending := make([]Pending, len(r.queue))
	for i, s := range r.queue {
		pending[i] = Pending{Type: s.desc.typ, Missing: s.missing()}
	}
	return &ResolutionExhaustedError{Limit: limit, Pending: pending}
}
