package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ARTM2000/acorn"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

type Config struct {
	DatabaseURL string
	MailFrom    string
}

type Logger struct {
	*slog.Logger
}

type Database struct {
	URL       string
	Logger    *Logger
	connected bool
}

func (db *Database) Connect() error {
	if db.URL == "" {
		return fmt.Errorf("database url is empty")
	}
	db.connected = true
	db.Logger.Debug("database connected", slog.String("url", db.URL))
	return nil
}

func (db *Database) Close() error {
	db.connected = false
	db.Logger.Debug("database closed", slog.String("url", db.URL))
	return nil
}

func (db *Database) Query(q string) string {
	db.Logger.Info("query", slog.String("sql", q))
	return "row-result"
}

type UserRepository struct {
	DB *Database
}

func (r *UserRepository) FindByID(id int) string {
	return r.DB.Query(fmt.Sprintf("SELECT * FROM users WHERE id = %d", id))
}

type UserService struct {
	Repo   *UserRepository
	Logger *Logger
	From   string
}

func (s *UserService) GetUser(id int) string {
	s.Logger.Info("looking up user", slog.Int("id", id))
	return s.Repo.FindByID(id)
}

// Mailer is produced by UserService rather than constructed directly.
func (s *UserService) Mailer() *Mailer {
	return &Mailer{From: s.From, Users: s}
}

type Mailer struct {
	From  string
	Users *UserService
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func NewConfig() *Config {
	return &Config{
		DatabaseURL: env("DATABASE_URL", "postgres://localhost:5432/app"),
		MailFrom:    env("MAIL_FROM", "noreply@example.com"),
	}
}

func NewDatabase(cfg *Config, l *Logger) *Database {
	return &Database{URL: cfg.DatabaseURL, Logger: l}
}

func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{DB: db}
}

func NewUserService(repo *UserRepository, l *Logger, cfg *Config) *UserService {
	return &UserService{Repo: repo, Logger: l, From: cfg.MailFrom}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// demoCatalog describes the sample application. Order does not matter.
func demoCatalog(cfg acorn.Config, log *slog.Logger) (*acorn.Catalog, error) {
	cat := acorn.NewCatalog(cfg, acorn.WithLogger(log))

	entries := []struct {
		ctor any
		opts []acorn.Option
	}{
		{NewUserService, []acorn.Option{acorn.WithProducer((*UserService).Mailer)}},
		{NewUserRepository, nil},
		{NewDatabase, []acorn.Option{acorn.WithInit((*Database).Connect)}},
		{func(*Config) *Logger { return &Logger{Logger: log.With(slog.String("component", "app"))} }, nil},
		{NewConfig, nil},
	}
	for _, e := range entries {
		if err := cat.Add(e.ctor, e.opts...); err != nil {
			return nil, err
		}
	}
	return cat, nil
}
