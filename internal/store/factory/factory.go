package factory

import (
	"fmt"
	"net/url"

	"github.com/devscope/devscope/internal/store"
	"github.com/devscope/devscope/internal/store/postgres"
	"github.com/devscope/devscope/internal/store/sqlite"
)

// New builds a ProjectStore from configuration. An empty type defaults to
// sqlite, matching the CLI default data path behavior in cmd.
func New(cfg store.Config) (store.ProjectStore, error) {
	switch cfg.Type {
	case "", "sqlite":
		return sqlite.New(cfg.Path)
	case "postgres", "postgresql":
		return postgres.New(postgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}

func postgresDSN(cfg store.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	ssl := cfg.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	q := u.Query()
	q.Set("sslmode", ssl)
	u.RawQuery = q.Encode()
	return u.String()
}
