package acorn

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrUnsatisfiedDependency is returned by the pre-flight check when a
	// required type has no candidate anywhere in the input set.
	ErrUnsatisfiedDependency = errors.New("unsatisfied dependency")

	// ErrResolutionExhausted is returned when the resolution loop requeues
	// more often than the configured maximum. This happens for dependency
	// cycles and for chains deeper than the bound allows.
	ErrResolutionExhausted = errors.New("resolution exhausted")

	// ErrConstruction is returned when a constructor fails, panics or is
	// called with the wrong number of arguments. Init hook failures match it
	// too.
	ErrConstruction = errors.New("construction failed")

	// ErrProducer is returned when a producer method fails or panics.
	ErrProducer = errors.New("producer failed")

	// ErrInitHook is returned when a service was constructed but its init
	// hook failed.
	ErrInitHook = errors.New("init hook failed")

	// ErrDestroyHook is returned when a destroy hook fails.
	ErrDestroyHook = errors.New("destroy hook failed")

	// ErrAlreadyInitialized is returned when Init is called on a container
	// that was already initialized.
	ErrAlreadyInitialized = errors.New("container already initialized")

	// ErrNotInitialized is returned by container operations that need a
	// registry before Init was called.
	ErrNotInitialized = errors.New("container not initialized")

	// ErrAlreadyShutdown is returned by Shutdown after the first call.
	ErrAlreadyShutdown = errors.New("container already shut down")

	// ErrServiceNotFound is returned when no registered descriptor holds the
	// requested instance.
	ErrServiceNotFound = errors.New("service not found")

	// ErrAlreadyBuilt is returned when a descriptor that already holds an
	// instance is built again without an intervening destroy.
	ErrAlreadyBuilt = errors.New("descriptor already built")

	// ErrOwnerNotBuilt is returned when a producer is invoked before its
	// owner has an instance.
	ErrOwnerNotBuilt = errors.New("producer owner not built")

	// ErrDuplicateService is returned when two descriptors share a type.
	ErrDuplicateService = errors.New("duplicate service")

	// ErrUnknownMarker is returned when a descriptor carries a marker the
	// configuration does not recognize.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

// UnsatisfiedDependencyError names the missing type and the descriptor that
// requires it.
type UnsatisfiedDependencyError struct {
	Required  reflect.Type
	Requester reflect.Type
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("%s: %s required by %s", ErrUnsatisfiedDependency, e.Required, e.Requester)
}

func (e *UnsatisfiedDependencyError) Unwrap() error { return ErrUnsatisfiedDependency }

// Pending describes a descriptor still waiting in the resolution queue.
type Pending struct {
	Type    reflect.Type
	Missing []reflect.Type
}

// ResolutionExhaustedError reports the iteration limit that was crossed and
// the descriptors that were still unresolved at that point. The pending list
// is a hint, not a proof of a cycle.
type ResolutionExhaustedError struct {
	Limit   int
	Pending []Pending
}

func (e *ResolutionExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: more than %d requeues", ErrResolutionExhausted, e.Limit)
	if len(e.Pending) == 0 {
		return b.String()
	}
	b.WriteString("; pending:")
	for i, p := range e.Pending {
		if i > 0 {
			b.WriteString(",")
		}
		missing := make([]string, len(p.Missing))
		for j, m := range p.Missing {
			missing[j] = m.String()
		}
		fmt.Fprintf(&b, " %s (waiting on %s)", p.Type, strings.Join(missing, ", "))
	}
	return b.String()
}

func (e *ResolutionExhaustedError) Unwrap() error { return ErrResolutionExhausted }

// Phase identifies the lifecycle step a LifecycleError happened in.
type Phase int

const (
	PhaseConstruct Phase = iota
	PhaseProduce
	PhaseInit
	PhaseDestroy
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseConstruct:
		return "construct"
	case PhaseProduce:
		return "produce"
	case PhaseInit:
		return "init"
	case PhaseDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// LifecycleError wraps a failure raised while building or destroying an
// instance. It matches the sentinel of its phase with errors.Is; init
// failures additionally match ErrConstruction.
type LifecycleError struct {
	Phase Phase
	Type  reflect.Type
	Err   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Type, e.Err)
}

func (e *LifecycleError) Unwrap() []error {
	switch e.Phase {
	case PhaseConstruct:
		return []error{ErrConstruction, e.Err}
	case PhaseProduce:
		return []error{ErrProducer, e.Err}
	case PhaseInit:
		return []error{ErrConstruction, ErrInitHook, e.Err}
	case PhaseDestroy:
		return []error{ErrDestroyHook, e.Err}
	default:
		return []error{e.Err}
	}
}
