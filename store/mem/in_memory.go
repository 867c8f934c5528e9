package mem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Datatamer/tamr-toolbox-sub000/store"
)

var (
	_ store.Store = &memStore{}
)

func NewMemStore() store.Store {
	return &memStore{
		m: make(map[string][]byte),
		// setup no error as default
		mockErrHandler: defaultNoErr,
	}
}

/**
 * NewMemStoreWithErrHandler lets tests inject persistence failures on
 * demand: the handler's return value is surfaced from every call.
 */
func NewMemStoreWithErrHandler(errHandler func() error) store.Store {
	return &memStore{
		m:              make(map[string][]byte),
		mockErrHandler: errHandler,
	}
}

func defaultNoErr() error {
	return nil
}

/**
 * memStore is a pure in-memory store for debug & testing.
 * NEVER use it in Production, nothing survives the process.
 */
type memStore struct {
	mu sync.Mutex

	mockErrHandler func() error

	m map[string][]byte
}

func storeKey(prefix, key string) string {
	return prefix + "|" + key
}

func (m *memStore) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.m))
	for key := range m.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sb := &strings.Builder{}
	sb.WriteString("\n----------\n")
	for _, key := range keys {
		fmt.Fprintf(sb, "%s: %s\n", key, string(m.m[key]))
	}
	sb.WriteString("----------\n")
	return sb.String()
}

func (m *memStore) Get(ctx context.Context, prefix, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.m[storeKey(prefix, key)], m.mockErrHandler()
}

func (m *memStore) Set(ctx context.Context, prefix, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.m[storeKey(prefix, key)] = value
	return m.mockErrHandler()
}

func (m *memStore) Remove(ctx context.Context, prefix, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.m, storeKey(prefix, key))
	return m.mockErrHandler()
}

func (m *memStore) List(ctx context.Context, prefix string, iterator func(key string) bool) error {
	m.mu.Lock()

	prefix = storeKey(prefix, "")
	matchedKeys := make([]string, 0)
	for key := range m.m {
		if strings.HasPrefix(key, prefix) {
			matchedKeys = append(matchedKeys, strings.TrimPrefix(key, prefix))
		}
	}
	m.mu.Unlock()

	sort.Strings(matchedKeys)
	for _, key := range matchedKeys {
		if !iterator(key) {
			break
		}
	}
	return m.mockErrHandler()
}
