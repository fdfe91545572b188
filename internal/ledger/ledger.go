// Package ledger owns accounts, stock items, usage events and billing records
// and keeps stock quantities consistent when stock is consumed.
package ledger

import (
	"sync"
	"time"

	"goldsure-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated account performing an operation.
type Actor struct {
	UserID uint
	Name   string
	Role   models.UserRole
}

type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time

	locks     *itemLocks
	restockMu sync.Mutex
}

type Option func(*Ledger)

// WithClock replaces time.Now for event and bill timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log.Named("ledger") }
}

func New(db *gorm.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:    db,
		log:   zap.NewNop(),
		now:   time.Now,
		locks: newItemLocks(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NormalizeName is the stock identity key: two names denote the same item
// when their normalized forms are equal.
func NormalizeName(name string) string {
	return models.NormalizeStockName(name)
}

// itemLocks hands out one mutex per stock item id, dropped when unused.
type itemLocks struct {
	mu sync.Mutex
	m  map[uint]*itemLock
}

type itemLock struct {
	sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{m: make(map[uint]*itemLock)}
}

func (l *itemLocks) lock(id uint) (unlock func()) {
	l.mu.Lock()
	il, ok := l.m[id]
	if !ok {
		il = &itemLock{}
		l.m[id] = il
	}
	il.refs++
	l.mu.Unlock()

	il.Lock()
	return func() {
		il.Unlock()
		l.mu.Lock()
		il.refs--
		if il.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
