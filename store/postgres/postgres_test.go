package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Datatamer/tamr-toolbox-sub000/store"
)

// getTestConfig reads overrides from the environment:
// POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DB
func getTestConfig() *Config {
	config := DefaultConfig()

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		config.Host = host
	}
	if port := os.Getenv("POSTGRES_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		config.User = user
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		config.Password = password
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		config.Database = db
	}

	return config
}

// skipIfNoPostgres skips the test if PostgreSQL is not available
func skipIfNoPostgres(t *testing.T) store.Store {
	s, err := NewPostgresStore(getTestConfig())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
		return nil
	}
	return s
}

func closeStore(s store.Store) {
	if closer, ok := s.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func TestPostgresStore_SetAndGet(t *testing.T) {
	s := skipIfNoPostgres(t)
	if s == nil {
		return
	}
	defer closeStore(s)

	ctx := context.Background()
	assert.Nil(t, s.Set(ctx, "/test/", "plan-1", []byte("payload")))

	value, err := s.Get(ctx, "/test/", "plan-1")
	assert.Nil(t, err)
	assert.Equal(t, []byte("payload"), value)

	// overwrite
	assert.Nil(t, s.Set(ctx, "/test/", "plan-1", []byte("payload2")))
	value, err = s.Get(ctx, "/test/", "plan-1")
	assert.Nil(t, err)
	assert.Equal(t, []byte("payload2"), value)

	// missing key comes back nil, nil
	value, err = s.Get(ctx, "/test/", "missing")
	assert.Nil(t, err)
	assert.Nil(t, value)

	assert.Nil(t, s.Remove(ctx, "/test/", "plan-1"))
}

func TestPostgresStore_RemoveAndList(t *testing.T) {
	s := skipIfNoPostgres(t)
	if s == nil {
		return
	}
	defer closeStore(s)

	ctx := context.Background()
	assert.Nil(t, s.Set(ctx, "/list/", "a", []byte("1")))
	assert.Nil(t, s.Set(ctx, "/list/", "b", []byte("2")))
	assert.Nil(t, s.Set(ctx, "/list/", "c", []byte("3")))

	keys := make([]string, 0)
	assert.Nil(t, s.List(ctx, "/list/", func(key string) bool {
		keys = append(keys, key)
		return true
	}))
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	// iterator can stop early
	keys = keys[:0]
	assert.Nil(t, s.List(ctx, "/list/", func(key string) bool {
		keys = append(keys, key)
		return false
	}))
	assert.Equal(t, []string{"a"}, keys)

	// removing twice is fine
	assert.Nil(t, s.Remove(ctx, "/list/", "a"))
	assert.Nil(t, s.Remove(ctx, "/list/", "a"))
	assert.Nil(t, s.Remove(ctx, "/list/", "b"))
	assert.Nil(t, s.Remove(ctx, "/list/", "c"))
}

func TestPostgresStoreWithDB(t *testing.T) {
	// a nil connection is rejected outright, no server needed
	_, err := NewPostgresStoreWithDB(nil)
	assert.NotNil(t, err)

	db, err := sql.Open("postgres", getTestConfig().DSN())
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
		return
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	s, err := NewPostgresStoreWithDB(db)
	assert.Nil(t, err)

	ctx := context.Background()
	assert.Nil(t, s.Set(ctx, "/shared/", "plan-1", []byte("payload")))

	value, err := s.Get(ctx, "/shared/", "plan-1")
	assert.Nil(t, err)
	assert.Equal(t, []byte("payload"), value)

	assert.Nil(t, s.Remove(ctx, "/shared/", "plan-1"))
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	assert.Nil(t, config.Validate())

	config.Port = 0
	assert.NotNil(t, config.Validate())

	config = DefaultConfig()
	config.SSLMode = "bogus"
	assert.NotNil(t, config.Validate())
}

func TestParseDSN(t *testing.T) {
	config, err := ParseDSN("host=dbhost port=5433 user=u password=p dbname=plans sslmode=require")
	assert.Nil(t, err)
	assert.Equal(t, "dbhost", config.Host)
	assert.Equal(t, 5433, config.Port)
	assert.Equal(t, "u", config.User)
	assert.Equal(t, "p", config.Password)
	assert.Equal(t, "plans", config.Database)
	assert.Equal(t, "require", config.SSLMode)
	assert.Contains(t, config.DSN(), "dbname=plans")
}
