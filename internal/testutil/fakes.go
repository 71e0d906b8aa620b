// Package testutil holds in-memory repositories for service tests. They honour
// the same contracts as the PostgreSQL repositories, including ledger
// versioning and sentinel errors.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cache"
	"github.com/google/uuid"
)

// ========================================
// LEDGER
// ========================================

type Ledger[T any] struct {
	mu   sync.Mutex
	docs map[string]ledger.Document[T]

	// SaveFn, when set, replaces Save. Tests use it to inject failures.
	SaveFn func(ctx context.Context, doc ledger.Document[T]) (ledger.Document[T], error)
	Saves  int
}

func NewLedger[T any]() *Ledger[T] {
	return &Ledger[T]{docs: map[string]ledger.Document[T]{}}
}

func (l *Ledger[T]) Get(ctx context.Context, employeeID string) (ledger.Document[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc, ok := l.docs[employeeID]
	if !ok {
		return ledger.Document[T]{EmployeeID: employeeID}, nil
	}
	return clone(doc), nil
}

func (l *Ledger[T]) GetMany(ctx context.Context, employeeIDs []string) ([]ledger.Document[T], error) {
	var out []ledger.Document[T]
	for _, id := range employeeIDs {
		doc, _ := l.Get(ctx, id)
		if doc.Exists() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (l *Ledger[T]) List(ctx context.Context) ([]ledger.Document[T], error) {
	l.mu.Lock()
	ids := make([]string, 0, len(l.docs))
	for id := range l.docs {
		ids = append(ids, id)
	}
	l.mu.Unlock()
	sort.Strings(ids)
	return l.GetMany(ctx, ids)
}

func (l *Ledger[T]) Save(ctx context.Context, doc ledger.Document[T]) (ledger.Document[T], error) {
	if l.SaveFn != nil {
		return l.SaveFn(ctx, doc)
	}
	return l.save(doc)
}

func (l *Ledger[T]) save(doc ledger.Document[T]) (ledger.Document[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Saves++

	current := l.docs[doc.EmployeeID]
	if current.Version != doc.Version {
		return ledger.Document[T]{}, ledger.ErrVersionConflict
	}
	if len(doc.Entries) == 0 {
		delete(l.docs, doc.EmployeeID)
		return ledger.Document[T]{EmployeeID: doc.EmployeeID}, nil
	}
	doc.Version++
	doc.UpdatedAt = time.Now()
	l.docs[doc.EmployeeID] = clone(doc)
	return doc, nil
}

func (l *Ledger[T]) Delete(ctx context.Context, employeeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.docs, employeeID)
	return nil
}

// Put stores entries directly, bypassing version checks.
func (l *Ledger[T]) Put(employeeID string, entries ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	current := l.docs[employeeID]
	l.docs[employeeID] = ledger.Document[T]{EmployeeID: employeeID, Entries: entries, Version: current.Version + 1}
}

// Entries returns the stored entries of one employee.
func (l *Ledger[T]) Entries(employeeID string) []T {
	doc, _ := l.Get(context.Background(), employeeID)
	return doc.Entries
}

func clone[T any](doc ledger.Document[T]) ledger.Document[T] {
	entries := make([]T, len(doc.Entries))
	copy(entries, doc.Entries)
	doc.Entries = entries
	return doc
}

// ========================================
// EMPLOYEES
// ========================================

type Employees struct {
	mu   sync.Mutex
	rows map[string]employee.Employee

	GetByBadgeCalls int
}

func NewEmployees(emps ...employee.Employee) *Employees {
	r := &Employees{rows: map[string]employee.Employee{}}
	for _, e := range emps {
		r.rows[e.ID] = e
	}
	return r
}

func (r *Employees) find(match func(employee.Employee) bool) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if match(e) {
			return r.withManager(e), nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// withManager fills the joined manager fields. Caller holds mu.
func (r *Employees) withManager(e employee.Employee) employee.Employee {
	e.ReportingManagerName, e.ReportingManagerBadge = nil, nil
	if e.ReportingManagerID != nil {
		if m, ok := r.rows[*e.ReportingManagerID]; ok {
			name, badge := m.FirstName, m.BadgeID
			e.ReportingManagerName, e.ReportingManagerBadge = &name, &badge
		}
	}
	return e
}

func (r *Employees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.ID == id })
}

func (r *Employees) GetByBadgeID(ctx context.Context, badgeID string) (employee.Employee, error) {
	r.mu.Lock()
	r.GetByBadgeCalls++
	r.mu.Unlock()
	return r.find(func(e employee.Employee) bool { return e.BadgeID == badgeID })
}

func (r *Employees) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return strings.EqualFold(e.Email, email) })
}

func (r *Employees) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if strings.EqualFold(e.Email, emp.Email) {
			return employee.Employee{}, employee.ErrEmailExists
		}
		if e.BadgeID == emp.BadgeID {
			return employee.Employee{}, employee.ErrBadgeIDExists
		}
	}
	if emp.ReportingManagerID != nil {
		if _, ok := r.rows[*emp.ReportingManagerID]; !ok {
			return employee.Employee{}, employee.ErrManagerNotFound
		}
	}
	emp.ID = uuid.Must(uuid.NewV7()).String()
	emp.CreatedAt = time.Now()
	emp.UpdatedAt = emp.CreatedAt
	r.rows[emp.ID] = emp
	return r.withManager(emp), nil
}

func (r *Employees) Update(ctx context.Context, emp employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[emp.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	for id, e := range r.rows {
		if id != emp.ID && strings.EqualFold(e.Email, emp.Email) {
			return employee.ErrEmailExists
		}
	}
	emp.UpdatedAt = time.Now()
	r.rows[emp.ID] = emp
	return nil
}

func (r *Employees) Inactivate(ctx context.Context, id string, endingDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	end, err := time.Parse(ledger.DateLayout, endingDate)
	if err != nil {
		return fmt.Errorf("parse ending date: %w", err)
	}
	e.Status = employee.StatusInactive
	e.EndingDate = &end
	r.rows[id] = e
	return nil
}

func (r *Employees) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.rows, id)
	for k, e := range r.rows {
		if e.ReportingManagerID != nil && *e.ReportingManagerID == id {
			e.ReportingManagerID = nil
			r.rows[k] = e
		}
	}
	return nil
}

func (r *Employees) all(match func(employee.Employee) bool) []employee.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.rows {
		if match(e) {
			out = append(out, r.withManager(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out
}

func (r *Employees) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	matched := r.all(func(e employee.Employee) bool {
		if filter.Status != nil && string(e.Status) != strings.ToLower(*filter.Status) {
			return false
		}
		if filter.Department != nil && e.Department != *filter.Department {
			return false
		}
		if filter.ReportingManagerID != nil && (e.ReportingManagerID == nil || *e.ReportingManagerID != *filter.ReportingManagerID) {
			return false
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(e.FullName()+" "+e.Email+" "+e.BadgeID), strings.ToLower(*filter.Search)) {
			return false
		}
		return true
	})
	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *Employees) GetActive(ctx context.Context) ([]employee.Employee, error) {
	return r.all(func(e employee.Employee) bool { return e.IsActive() }), nil
}

func (r *Employees) GetByReportingManager(ctx context.Context, managerID string) ([]employee.Employee, error) {
	return r.all(func(e employee.Employee) bool {
		return e.ReportingManagerID != nil && *e.ReportingManagerID == managerID
	}), nil
}

type BadgeCounter struct {
	mu    sync.Mutex
	value int64
}

func (c *BadgeCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value, nil
}

// ========================================
// USERS AND TOKENS
// ========================================

type Users struct {
	mu   sync.Mutex
	rows map[string]user.User
}

func NewUsers(users ...user.User) *Users {
	r := &Users{rows: map[string]user.User{}}
	for _, u := range users {
		r.rows[u.ID] = u
	}
	return r
}

func (r *Users) find(match func(user.User) bool) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *Users) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *Users) GetByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.EmployeeID != nil && *u.EmployeeID == employeeID })
}

func (r *Users) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, newUser.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	newUser.ID = uuid.Must(uuid.NewV7()).String()
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = newUser.CreatedAt
	r.rows[newUser.ID] = newUser
	return newUser, nil
}

func (r *Users) update(id string, fn func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&u)
	r.rows[id] = u
	return nil
}

func (r *Users) UpdateEmail(ctx context.Context, id string, email string) error {
	return r.update(id, func(u *user.User) { u.Email = email })
}

func (r *Users) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.update(id, func(u *user.User) { u.PasswordHash = &passwordHash })
}

func (r *Users) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return r.update(id, func(u *user.User) { u.Role = role })
}

func (r *Users) DeleteByEmployeeID(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.rows {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			delete(r.rows, id)
		}
	}
	return nil
}

type RefreshTokens struct {
	mu      sync.Mutex
	tokens  map[string]string
	revoked map[string]bool
}

func NewRefreshTokens() *RefreshTokens {
	return &RefreshTokens{tokens: map[string]string{}, revoked: map[string]bool{}}
}

func (r *RefreshTokens) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
	return nil
}

func (r *RefreshTokens) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return true, nil
	}
	return r.revoked[token], nil
}

func (r *RefreshTokens) RevokeRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = true
	return nil
}

func (r *RefreshTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, owner := range r.tokens {
		if owner == userID {
			r.revoked[token] = true
		}
	}
	return nil
}

// ========================================
// CATALOGUES
// ========================================

type LeaveTypes struct {
	mu   sync.Mutex
	rows map[string]leave.LeaveType
}

func NewLeaveTypes(types ...leave.LeaveType) *LeaveTypes {
	r := &LeaveTypes{rows: map[string]leave.LeaveType{}}
	for _, lt := range types {
		r.rows[lt.ID] = lt
	}
	return r
}

func (r *LeaveTypes) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Name == lt.Name {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
	}
	lt.ID = uuid.Must(uuid.NewV7()).String()
	r.rows[lt.ID] = lt
	return lt, nil
}

func (r *LeaveTypes) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lt, ok := r.rows[id]
	if !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

func (r *LeaveTypes) List(ctx context.Context) ([]leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leave.LeaveType, 0, len(r.rows))
	for _, lt := range r.rows {
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *LeaveTypes) Update(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[lt.ID]; !ok {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	for id, existing := range r.rows {
		if id != lt.ID && existing.Name == lt.Name {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
	}
	r.rows[lt.ID] = lt
	return lt, nil
}

func (r *LeaveTypes) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return leave.ErrLeaveTypeNotFound
	}
	delete(r.rows, id)
	return nil
}

type Catalogue struct {
	mu    sync.Mutex
	items map[master.Kind][]master.Item
}

func NewCatalogue() *Catalogue {
	return &Catalogue{items: map[master.Kind][]master.Item{}}
}

func (c *Catalogue) Create(ctx context.Context, kind master.Kind, name string) (master.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items[kind] {
		if it.Name == name {
			return master.Item{}, master.ErrItemNameExists
		}
	}
	item := master.Item{ID: uuid.Must(uuid.NewV7()).String(), Kind: kind, Name: name}
	c.items[kind] = append(c.items[kind], item)
	return item, nil
}

func (c *Catalogue) GetByID(ctx context.Context, kind master.Kind, id string) (master.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items[kind] {
		if it.ID == id {
			return it, nil
		}
	}
	return master.Item{}, master.ErrItemNotFound
}

func (c *Catalogue) List(ctx context.Context, kind master.Kind) ([]master.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]master.Item, len(c.items[kind]))
	copy(out, c.items[kind])
	return out, nil
}

func (c *Catalogue) Update(ctx context.Context, kind master.Kind, id string, name string) (master.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items[kind] {
		if it.ID == id {
			c.items[kind][i].Name = name
			return c.items[kind][i], nil
		}
	}
	return master.Item{}, master.ErrItemNotFound
}

func (c *Catalogue) Delete(ctx context.Context, kind master.Kind, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items[kind] {
		if it.ID == id {
			c.items[kind] = append(c.items[kind][:i], c.items[kind][i+1:]...)
			return nil
		}
	}
	return master.ErrItemNotFound
}

func (c *Catalogue) ExistsByName(ctx context.Context, kind master.Kind, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items[kind] {
		if it.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *Catalogue) Count(ctx context.Context, kind master.Kind) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.items[kind])), nil
}

// ========================================
// MISC
// ========================================

// TxManager runs fn directly.
type TxManager struct {
	Calls int
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// As returns ctx carrying an identity for emp with role.
func As(ctx context.Context, emp employee.Employee, role user.Role) context.Context {
	e := emp
	return identity.WithIdentity(ctx, identity.Identity{
		UserID:   "user-" + emp.ID,
		Email:    emp.Email,
		Role:     role,
		Employee: &e,
	})
}

// AsSuperuser returns ctx carrying the superuser identity.
func AsSuperuser(ctx context.Context) context.Context {
	return identity.WithIdentity(ctx, identity.Identity{
		UserID:      "superuser",
		Email:       "admin@example.com",
		Role:        user.RoleAdmin,
		IsSuperuser: true,
	})
}

// Employee builds an active employee fixture.
func Employee(id, badge, firstName string, managerID *string) employee.Employee {
	return employee.Employee{
		ID:                 id,
		BadgeID:            badge,
		FirstName:          firstName,
		LastName:           "Test",
		Email:              strings.ToLower(firstName) + "@example.com",
		Department:         "Engineering",
		JobRole:            "Developer",
		Shift:              "Day",
		WorkType:           "Office",
		ReportingManagerID: managerID,
		JoiningDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:             employee.StatusActive,
		BankName:           "State Bank",
		AccountNumber:      "1234567890",
		IFSC:               "SBIN0001234",
		BankBranch:         "Main",
	}
}

// Cache is a map-backed cache.Cache storing JSON like the Redis cache does.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Sets    int
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]byte{}}
}

func (c *Cache) Get(ctx context.Context, key string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, target)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	c.Sets++
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Has reports whether key is cached.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
