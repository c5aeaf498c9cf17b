package acorn

import "log/slog"

// describeOptions collects the raw values passed to Describe. They are
// validated once the service type is known.
type describeOptions struct {
	marker    Marker
	init      any
	destroy   any
	producers []producerOptions
}

type producerOptions struct {
	fn     any
	marker Marker
}

// Option configures a descriptor during Describe.
type Option func(*describeOptions)

// WithMarker sets the marker of the service. The default is [ServiceMarker].
func WithMarker(m Marker) Option {
	return func(o *describeOptions) {
		o.marker = m
	}
}

// WithInit sets the init hook, run right after construction. fn must be a
// func(T) or func(T) error where T accepts the service type. Method
// expressions such as (*Server).Start fit this shape.
func WithInit(fn any) Option {
	return func(o *describeOptions) {
		o.init = fn
	}
}

// WithDestroy sets the destroy hook, run before the instance is dropped. fn
// has the same shape as for [WithInit]. Without it, services implementing
// io.Closer are closed.
func WithDestroy(fn any) Option {
	return func(o *describeOptions) {
		o.destroy = fn
	}
}

// WithProducer adds a producer method. fn must be a func(T) R or
// func(T) (R, error); the returned R becomes a container-managed value of its
// own, built right after the owning service.
func WithProducer(fn any, opts ...ProducerOption) Option {
	return func(o *describeOptions) {
		p := producerOptions{fn: fn, marker: ProducerMarker}
		for _, opt := range opts {
			opt(&p)
		}
		o.producers = append(o.producers, p)
	}
}

// ProducerOption configures a single producer added with [WithProducer].
type ProducerOption func(*producerOptions)

// WithProducerMarker sets the marker of the producer descriptor. The default
// is [ProducerMarker].
func WithProducerMarker(m Marker) ProducerOption {
	return func(p *producerOptions) {
		p.marker = m
	}
}

// runtimeOptions holds the settings shared by the Instantiator, Engine,
// Container and Catalog.
type runtimeOptions struct {
	logger *slog.Logger
}

// RuntimeOption configures the runtime components.
type RuntimeOption func(*runtimeOptions)

// WithLogger routes the component's structured logs to l. By default logs
// are discarded.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(o *runtimeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func newRuntimeOptions(opts []RuntimeOption) runtimeOptions {
	o := runtimeOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
