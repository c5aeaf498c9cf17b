package acorn

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test types and constructors used across test files.

// mustDescribe calls t.Fatal if the constructor cannot be described.
func mustDescribe(t *testing.T, constructor any, opts ...Option) *Descriptor {
	t.Helper()
	d, err := Describe(constructor, opts...)
	require.NoError(t, err, "Describe")
	return d
}

// mustBootstrap resolves descs with the default config and fails the test on
// error.
func mustBootstrap(t *testing.T, descs ...*Descriptor) *Container {
	t.Helper()
	c, err := Bootstrap(DefaultConfig(), descs)
	require.NoError(t, err, "Bootstrap")
	return c
}

// newTestEngine returns an engine bounded by max requeues.
func newTestEngine(t *testing.T, max int) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxIterations = max
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err, "NewEngine")
	return e
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func types(descs []*Descriptor) []reflect.Type {
	out := make([]reflect.Type, len(descs))
	for i, d := range descs {
		out[i] = d.Type()
	}
	return out
}

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUserRepo struct {
	DB     *testDatabase
	Logger *testLogger
}

type testService interface {
	Name() string
}

type testUserService struct {
	Repo   *testUserRepo
	Logger *testLogger
}

func (s *testUserService) Name() string { return "user" }

type testOrderService struct{ Logger *testLogger }

func (s *testOrderService) Name() string { return "order" }

type testCircA struct{ B *testCircB }
type testCircB struct{ A *testCircA }

func newTestLogger() *testLogger           { return &testLogger{Prefix: "app"} }
func newTestConfig() *testConfig           { return &testConfig{DSN: "postgres://localhost"} }
func newTestCircA(b *testCircB) *testCircA { return &testCircA{B: b} }
func newTestCircB(a *testCircA) *testCircB { return &testCircB{A: a} }

func newTestDatabase(cfg *testConfig, log *testLogger) *testDatabase {
	return &testDatabase{Config: cfg, Logger: log}
}

func newTestUserRepo(db *testDatabase, log *testLogger) *testUserRepo {
	return &testUserRepo{DB: db, Logger: log}
}

func newTestUserService(repo *testUserRepo, log *testLogger) *testUserService {
	return &testUserService{Repo: repo, Logger: log}
}

func newTestOrderService(log *testLogger) *testOrderService {
	return &testOrderService{Logger: log}
}

// Leaf, Mid and Top form a three-level chain; Mid produces a Widget.
type testLeaf struct{ Gen int }
type testMid struct{ Leaf *testLeaf }
type testTop struct{ Mid *testMid }
type testSib struct{ Leaf *testLeaf }
type testWidget struct{ Owner *testMid }

func newTestLeaf() *testLeaf           { return &testLeaf{} }
func newTestMid(l *testLeaf) *testMid  { return &testMid{Leaf: l} }
func newTestTop(m *testMid) *testTop   { return &testTop{Mid: m} }
func newTestSib(l *testLeaf) *testSib  { return &testSib{Leaf: l} }
func (m *testMid) Widget() *testWidget { return &testWidget{Owner: m} }
func (m *testMid) BrokenWidget() (*testWidget, error) {
	return nil, errors.New("widget unavailable")
}

// testLifecycle records hook calls in a shared journal.
type testLifecycle struct {
	Name    string
	Journal *[]string
}

func (l *testLifecycle) Start() { *l.Journal = append(*l.Journal, "start "+l.Name) }
func (l *testLifecycle) Stop()  { *l.Journal = append(*l.Journal, "stop "+l.Name) }

// testClosable implements io.Closer for destroy tests.
type testClosable struct {
	Name   string
	Closed bool
	Order  *[]string // shared slice to record close order
}

func (c *testClosable) Close() error {
	c.Closed = true
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error. It carries a field
// so that separate instances get distinct addresses.
type testFailCloser struct{ Name string }

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}
