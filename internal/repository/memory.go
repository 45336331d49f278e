package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lasmate/Alisee/internal/model"
)

// MemoryStore is an in-process store with the same surface as ShopRepository.
// It serves development runs without Postgres and the service and handler tests.
type MemoryStore struct {
	mu sync.RWMutex

	nextUserID  int64
	nextItemID  int64
	nextImageID int64
	nextOrderID int64

	users    map[int64]model.User
	sessions map[string]model.Session
	items    map[int64]model.Item
	images   map[int64]model.Image
	orders   map[int64]model.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:  1,
		nextItemID:  1,
		nextImageID: 1,
		nextOrderID: 1,
		users:       make(map[int64]model.User),
		sessions:    make(map[string]model.Session),
		items:       make(map[int64]model.Item),
		images:      make(map[int64]model.Image),
		orders:      make(map[int64]model.Order),
	}
}

// transaction-aware locking helpers
type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	b, ok := ctx.Value(memTxKey{}).(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Unlock()
	}
}

// RunAtomic holds the write lock for the duration of fn. Writes made before fn fails
// are not rolled back.
func (m *MemoryStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	u.ID = m.nextUserID
	m.nextUserID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	stored := *u
	stored.OrderIDs = nil
	m.users[u.ID] = stored
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	orderIDs := make(map[int64][]int64)
	for _, o := range m.orders {
		if o.UserID != 0 {
			orderIDs[o.UserID] = append(orderIDs[o.UserID], o.ID)
		}
	}
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		ids := orderIDs[u.ID]
		slices.Sort(ids)
		if ids == nil {
			ids = []int64{}
		}
		u.OrderIDs = ids
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateAccountType(ctx context.Context, id int64, t model.AccountType) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.AccountType = t
	m.users[id] = u
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	for sid, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, sid)
		}
	}
	for oid, o := range m.orders {
		if o.UserID == id {
			o.UserID = 0
			m.orders[oid] = o
		}
	}
	return nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, s model.Session) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.users[s.UserID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) CreateItem(ctx context.Context, it *model.Item) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	it.ID = m.nextItemID
	m.nextItemID++
	m.items[it.ID] = copyItem(*it)
	return nil
}

func (m *MemoryStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyItem(it)
	return &cp, nil
}

func (m *MemoryStore) GetItemByName(ctx context.Context, name string) (*model.Item, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var found *model.Item
	for _, it := range m.items {
		if it.Name == name && (found == nil || it.ID < found.ID) {
			cp := copyItem(it)
			found = &cp
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) UpdateItem(ctx context.Context, it *model.Item) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.items[it.ID]; !ok {
		return ErrNotFound
	}
	m.items[it.ID] = copyItem(*it)
	return nil
}

func (m *MemoryStore) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]model.Item, 0, len(m.items))
	for _, it := range m.items {
		if f.AvailableOnly && !it.IsAvailable {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		out = append(out, copyItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CountItems(ctx context.Context) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return int64(len(m.items)), nil
}

func (m *MemoryStore) SetItemAvailability(ctx context.Context, id int64, available bool) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	it.IsAvailable = available
	m.items[id] = it
	return nil
}

func (m *MemoryStore) CreateImage(ctx context.Context, img *model.Image) (bool, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	for _, existing := range m.images {
		if existing.Name == img.Name || existing.Path == img.Path {
			return false, nil
		}
	}
	img.ID = m.nextImageID
	m.nextImageID++
	m.images[img.ID] = *img
	return true, nil
}

func (m *MemoryStore) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	img, ok := m.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &img, nil
}

func (m *MemoryStore) CountImages(ctx context.Context) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	return int64(len(m.images)), nil
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o *model.Order) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	o.ID = m.nextOrderID
	m.nextOrderID++
	m.orders[o.ID] = copyOrder(*o)
	return nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

// GetOrderForUpdate is GetOrder; callers inside RunAtomic already hold the write lock.
func (m *MemoryStore) GetOrderForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]model.OrderSummary, 0, len(m.orders))
	for _, o := range m.orders {
		s := model.OrderSummary{Order: copyOrder(o)}
		if u, ok := m.users[o.UserID]; ok {
			s.UserName, s.UserSurname, s.UserEmail = u.Name, u.Surname, u.Email
		}
		s.Completed = s.IsCompleted()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].Order, out[j].Order) })
	return out, nil
}

func (m *MemoryStore) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]model.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i], out[j]) })
	return out, nil
}

func (m *MemoryStore) UpdateOrderProgress(ctx context.Context, o *model.Order) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	stored, ok := m.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = o.Status
	stored.ProcessedAt = copyTime(o.ProcessedAt)
	stored.ShippedAt = copyTime(o.ShippedAt)
	m.orders[o.ID] = stored
	return nil
}

func (m *MemoryStore) CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	counts := make(map[model.OrderStatus]int64)
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func newerFirst(a, b model.Order) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func copyItem(it model.Item) model.Item {
	if it.Size != nil {
		s := *it.Size
		it.Size = &s
	}
	return it
}

func copyOrder(o model.Order) model.Order {
	o.Lines = slices.Clone(o.Lines)
	for i := range o.Lines {
		if id := o.Lines[i].CustomizationID; id != nil {
			v := *id
			o.Lines[i].CustomizationID = &v
		}
	}
	o.ProcessedAt = copyTime(o.ProcessedAt)
	o.ShippedAt = copyTime(o.ShippedAt)
	return o
}

var now = func() time.Time { return time.Now().UTC() }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
