package acorn_test

import (
	"context"
	"fmt"

	"github.com/ARTM2000/acorn"
)

// Types used in examples only.
type Logger struct{ Prefix string }
type Config struct{ DSN string }
type Database struct {
	Config *Config
	Logger *Logger
}

func (db *Database) Close() error {
	fmt.Println("closing database")
	return nil
}

type Greeter interface {
	Greet() string
}
type englishGreeter struct{}

func (g *englishGreeter) Greet() string { return "hello" }

type Session struct{ DB *Database }

func (db *Database) Session() *Session { return &Session{DB: db} }

func ExampleBootstrap() {
	c, err := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{
		acorn.MustDescribe(func(cfg *Config, log *Logger) *Database {
			return &Database{Config: cfg, Logger: log}
		}),
		acorn.MustDescribe(func() *Config { return &Config{DSN: "postgres://localhost"} }),
		acorn.MustDescribe(func() *Logger { return &Logger{Prefix: "app"} }),
	})
	if err != nil {
		panic(err)
	}

	db := acorn.MustGet[*Database](c)
	fmt.Println(db.Config.DSN)
	fmt.Println(db.Logger.Prefix)
	// Output:
	// postgres://localhost
	// app
}

func ExampleGet() {
	c, _ := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{
		acorn.MustDescribe(func() *englishGreeter { return &englishGreeter{} }),
	})

	g, ok := acorn.Get[Greeter](c)
	fmt.Println(ok, g.Greet())

	_, ok = acorn.Get[*Logger](c)
	fmt.Println(ok)
	// Output:
	// true hello
	// false
}

func ExampleWithProducer() {
	c, _ := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{
		acorn.MustDescribe(func() *Database { return &Database{} },
			acorn.WithProducer((*Database).Session)),
	})

	s := acorn.MustGet[*Session](c)
	fmt.Println(s.DB == acorn.MustGet[*Database](c))

	d, _ := acorn.DetailsOf[*Session](c)
	fmt.Println(d.Kind(), d.Owner().Type())
	// Output:
	// true
	// producer *acorn_test.Database
}

func ExampleReload() {
	c, _ := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{
		acorn.MustDescribe(func() *Logger { return &Logger{Prefix: "app"} }),
		acorn.MustDescribe(func(l *Logger) *Config { return &Config{DSN: l.Prefix + "-db"} }),
	})

	old := acorn.MustGet[*Logger](c)
	fresh, err := acorn.Reload(c, old, true)
	if err != nil {
		panic(err)
	}
	fmt.Println(old == fresh)
	fmt.Println(acorn.MustGet[*Config](c).DSN)
	// Output:
	// false
	// app-db
}

func ExampleContainer_Shutdown() {
	c, _ := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{
		acorn.MustDescribe(func() *Database { return &Database{} }),
	})

	if err := c.Shutdown(context.Background()); err != nil {
		panic(err)
	}
	// Output: closing database
}

func ExampleCatalog() {
	cat := acorn.NewCatalog(acorn.DefaultConfig())
	cat.MustAdd(func() *Logger { return &Logger{Prefix: "app"} })

	err := cat.Add(func() *Config { return &Config{} }, acorn.WithMarker("component"))
	fmt.Println(err)

	c, _ := acorn.BootstrapCatalog(cat)
	fmt.Println(len(c.ServicesDetails()))
	// Output:
	// unknown marker: "component" on *acorn_test.Config
	// 1
}
