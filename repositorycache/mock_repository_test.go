package repositorycache

import (
	"context"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// TestUser represents a test entity
type TestUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// mockRepository serves TestUser rows from memory and records every call.
type mockRepository struct {
	mu    sync.Mutex
	calls []string
	rows  map[string]TestUser

	getError  error
	listError error
}

func newMockRepository(users ...TestUser) *mockRepository {
	m := &mockRepository{rows: make(map[string]TestUser)}
	for _, u := range users {
		m.rows[u.ID] = u
	}
	return m
}

func (m *mockRepository) recordCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
}

func (m *mockRepository) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRepository) countCalls(method string) int {
	n := 0
	for _, c := range m.getCalls() {
		if c == method {
			n++
		}
	}
	return n
}

func (m *mockRepository) clearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *mockRepository) put(u TestUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[u.ID] = u
}

func (m *mockRepository) lookup(id string) (TestUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return TestUser{}, m.getError
	}
	u, ok := m.rows[id]
	if !ok {
		return TestUser{}, errNotFound
	}
	return u, nil
}

func (m *mockRepository) all() []TestUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TestUser, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out
}

func (m *mockRepository) Get(ctx context.Context, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("Get")
	users := m.all()
	if len(users) == 0 {
		return TestUser{}, errNotFound
	}
	return users[0], nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("GetByID")
	return m.lookup(id)
}

func (m *mockRepository) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("GetByIdentifier")
	for _, u := range m.all() {
		if u.Name == identifier {
			return u, nil
		}
	}
	return TestUser{}, errNotFound
}

func (m *mockRepository) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]TestUser, int, error) {
	m.recordCall("List")
	if m.listError != nil {
		return nil, 0, m.listError
	}
	users := m.all()
	return users, len(users), nil
}

func (m *mockRepository) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	m.recordCall("Count")
	return len(m.all()), nil
}

func (m *mockRepository) Create(ctx context.Context, record TestUser, criteria ...repository.InsertCriteria) (TestUser, error) {
	m.recordCall("Create")
	m.put(record)
	return record, nil
}

func (m *mockRepository) CreateTx(ctx context.Context, tx bun.IDB, record TestUser, criteria ...repository.InsertCriteria) (TestUser, error) {
	m.recordCall("CreateTx")
	m.put(record)
	return record, nil
}

func (m *mockRepository) CreateMany(ctx context.Context, records []TestUser, criteria ...repository.InsertCriteria) ([]TestUser, error) {
	m.recordCall("CreateMany")
	for _, r := range records {
		m.put(r)
	}
	return records, nil
}

func (m *mockRepository) CreateManyTx(ctx context.Context, tx bun.IDB, records []TestUser, criteria ...repository.InsertCriteria) ([]TestUser, error) {
	m.recordCall("CreateManyTx")
	return m.CreateMany(ctx, records)
}

func (m *mockRepository) GetOrCreate(ctx context.Context, record TestUser) (TestUser, error) {
	m.recordCall("GetOrCreate")
	if u, err := m.lookup(record.ID); err == nil {
		return u, nil
	}
	m.put(record)
	return record, nil
}

func (m *mockRepository) GetOrCreateTx(ctx context.Context, tx bun.IDB, record TestUser) (TestUser, error) {
	m.recordCall("GetOrCreateTx")
	return m.GetOrCreate(ctx, record)
}

func (m *mockRepository) Update(ctx context.Context, record TestUser, criteria ...repository.UpdateCriteria) (TestUser, error) {
	m.recordCall("Update")
	m.put(record)
	return record, nil
}

func (m *mockRepository) UpdateTx(ctx context.Context, tx bun.IDB, record TestUser, criteria ...repository.UpdateCriteria) (TestUser, error) {
	m.recordCall("UpdateTx")
	m.put(record)
	return record, nil
}

func (m *mockRepository) UpdateMany(ctx context.Context, records []TestUser, criteria ...repository.UpdateCriteria) ([]TestUser, error) {
	m.recordCall("UpdateMany")
	for _, r := range records {
		m.put(r)
	}
	return records, nil
}

func (m *mockRepository) UpdateManyTx(ctx context.Context, tx bun.IDB, records []TestUser, criteria ...repository.UpdateCriteria) ([]TestUser, error) {
	m.recordCall("UpdateManyTx")
	return m.UpdateMany(ctx, records)
}

func (m *mockRepository) Upsert(ctx context.Context, record TestUser, criteria ...repository.UpdateCriteria) (TestUser, error) {
	m.recordCall("Upsert")
	m.put(record)
	return record, nil
}

func (m *mockRepository) UpsertTx(ctx context.Context, tx bun.IDB, record TestUser, criteria ...repository.UpdateCriteria) (TestUser, error) {
	m.recordCall("UpsertTx")
	m.put(record)
	return record, nil
}

func (m *mockRepository) UpsertMany(ctx context.Context, records []TestUser, criteria ...repository.UpdateCriteria) ([]TestUser, error) {
	m.recordCall("UpsertMany")
	for _, r := range records {
		m.put(r)
	}
	return records, nil
}

func (m *mockRepository) UpsertManyTx(ctx context.Context, tx bun.IDB, records []TestUser, criteria ...repository.UpdateCriteria) ([]TestUser, error) {
	m.recordCall("UpsertManyTx")
	return m.UpsertMany(ctx, records)
}

func (m *mockRepository) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

func (m *mockRepository) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]TestUser)
}

func (m *mockRepository) Delete(ctx context.Context, record TestUser) error {
	m.recordCall("Delete")
	m.remove(record.ID)
	return nil
}

func (m *mockRepository) DeleteTx(ctx context.Context, tx bun.IDB, record TestUser) error {
	m.recordCall("DeleteTx")
	m.remove(record.ID)
	return nil
}

func (m *mockRepository) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	m.recordCall("DeleteMany")
	m.clear()
	return nil
}

func (m *mockRepository) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	m.recordCall("DeleteManyTx")
	m.clear()
	return nil
}

func (m *mockRepository) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	m.recordCall("DeleteWhere")
	m.clear()
	return nil
}

func (m *mockRepository) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	m.recordCall("DeleteWhereTx")
	m.clear()
	return nil
}

func (m *mockRepository) ForceDelete(ctx context.Context, record TestUser) error {
	m.recordCall("ForceDelete")
	m.remove(record.ID)
	return nil
}

func (m *mockRepository) ForceDeleteTx(ctx context.Context, tx bun.IDB, record TestUser) error {
	m.recordCall("ForceDeleteTx")
	m.remove(record.ID)
	return nil
}

func (m *mockRepository) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("GetTx")
	return m.Get(ctx, criteria...)
}

func (m *mockRepository) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("GetByIDTx")
	return m.lookup(id)
}

func (m *mockRepository) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]TestUser, int, error) {
	m.recordCall("ListTx")
	users := m.all()
	return users, len(users), nil
}

func (m *mockRepository) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	m.recordCall("CountTx")
	return len(m.all()), nil
}

func (m *mockRepository) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (TestUser, error) {
	m.recordCall("GetByIdentifierTx")
	return m.GetByIdentifier(ctx, identifier, criteria...)
}

func (m *mockRepository) Raw(ctx context.Context, sql string, args ...any) ([]TestUser, error) {
	m.recordCall("Raw")
	return m.all(), nil
}

func (m *mockRepository) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]TestUser, error) {
	m.recordCall("RawTx")
	return m.all(), nil
}

func (m *mockRepository) Handlers() repository.ModelHandlers[TestUser] {
	panic("Handlers not implemented in mock")
}
