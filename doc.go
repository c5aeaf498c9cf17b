// Package acorn builds an object graph out of constructor functions and keeps
// it in a container that supports lookup by type and selective rebuilds.
//
// Describe each service with its constructor, optional lifecycle hooks and
// optional producer methods, resolve the set with an [Engine], and hand the
// result to a [Container]. [Bootstrap] does all three in one call.
//
// # Quick Start
//
//	cat := acorn.NewCatalog(acorn.DefaultConfig())
//	cat.MustAdd(NewConfig)
//	cat.MustAdd(NewDatabase, acorn.WithDestroy((*Database).Close))
//	cat.MustAdd(NewUserService, acorn.WithProducer((*UserService).Mailer))
//
//	c, err := acorn.BootstrapCatalog(cat)
//	db, ok := acorn.Get[*Database](c)
//
// # Resolution
//
// The input is treated as an unordered set. Every service waits in a queue
// until each constructor parameter has been filled by an instance built
// earlier in the run; a parameter accepts the first built instance whose
// declared type is assignable to it. Before the loop starts, every
// parameter type must have at least one candidate, otherwise the run fails
// with [ErrUnsatisfiedDependency]. Cycles are not detected as such: the loop
// gives up with [ErrResolutionExhausted] once the number of requeues exceeds
// [Config.MaxIterations].
//
// # Producers
//
// A producer is a method of a service that yields another container-managed
// value. It is invoked once, right after its owner is built:
//
//	cat.MustAdd(NewMailerFactory, acorn.WithProducer((*MailerFactory).Mailer))
//
// # Reload
//
// [Container.Reload] destroys a service and rebuilds it from the instances
// currently in the container. With cascade set, every service recorded as a
// dependent is rebuilt too. A service is recorded as a dependent of a
// provider when it is built after the provider and one of its parameters
// accepts the provider's type.
package acorn
