package acorn

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Catalog collects the descriptors handed to the engine. It stands in for
// type discovery: every type appears at most once and carries a marker the
// configuration recognizes.
type Catalog struct {
	cfg   Config
	log   *slog.Logger
	descs []*Descriptor
	types map[reflect.Type]bool
}

// NewCatalog creates an empty [Catalog] validating markers against cfg.
func NewCatalog(cfg Config, opts ...RuntimeOption) *Catalog {
	o := newRuntimeOptions(opts)
	return &Catalog{
		cfg:   cfg,
		log:   o.logger,
		types: make(map[reflect.Type]bool),
	}
}

// Add describes constructor and adds the result to the catalog.
func (c *Catalog) Add(constructor any, opts ...Option) error {
	d, err := Describe(constructor, opts...)
	if err != nil {
		return err
	}
	return c.AddDescriptor(d)
}

// AddCandidates adds the constructor chosen by [SelectConstructor] among
// candidates. Use it when a type offers several constructors.
func (c *Catalog) AddCandidates(candidates []any, opts ...Option) error {
	ctor, err := SelectConstructor(candidates...)
	if err != nil {
		return err
	}
	return c.Add(ctor, opts...)
}

// AddDescriptor adds an already described service.
func (c *Catalog) AddDescriptor(d *Descriptor) error {
	if d.kind != KindService {
		return fmt.Errorf("%s: only service descriptors can be added", d)
	}
	if c.types[d.typ] {
		return fmt.Errorf("%w: %s", ErrDuplicateService, d.typ)
	}
	if !c.cfg.IsServiceMarker(d.marker) {
		return fmt.Errorf("%w: %q on %s", ErrUnknownMarker, d.marker, d.typ)
	}
	for _, p := range d.producers {
		if !c.cfg.IsProducerMarker(p.marker) {
			return fmt.Errorf("%w: %q on producer %s of %s", ErrUnknownMarker, p.marker, p.out, d.typ)
		}
	}

	c.types[d.typ] = true
	c.descs = append(c.descs, d)
	c.log.Debug("service described", d.logAttrs(), slog.Int("requires", len(d.requires)), slog.Int("producers", len(d.producers)))
	return nil
}

// MustAdd is like [Catalog.Add] but panics on error.
func (c *Catalog) MustAdd(constructor any, opts ...Option) {
	if err := c.Add(constructor, opts...); err != nil {
		panic(err)
	}
}

// Descriptors returns the catalogued descriptors in insertion order.
func (c *Catalog) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(c.descs))
	copy(out, c.descs)
	return out
}

// Len returns the number of catalogued services.
func (c *Catalog) Len() int { return len(c.descs) }
