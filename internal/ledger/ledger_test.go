package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"goldsure-backend/internal/database"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db     *gorm.DB
	ledger *ledger.Ledger
	owner  ledger.Actor
	staff  ledger.Actor
}

// stepClock returns strictly increasing timestamps so newest-first ordering is deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	owner := models.User{Name: "Goldsure Admin", Email: "admin@goldsure.com", PasswordHash: string(hash), Role: models.RoleOwner}
	staff := models.User{Name: "Goldsure Staff", Email: "staff@goldsure.com", PasswordHash: string(hash), Role: models.RoleStaff}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&staff).Error)

	return &fixture{
		db:     db,
		ledger: ledger.New(db, ledger.WithClock(stepClock())),
		owner:  ledger.Actor{UserID: owner.ID, Name: owner.Name, Role: owner.Role},
		staff:  ledger.Actor{UserID: staff.ID, Name: staff.Name, Role: staff.Role},
	}
}

func (f *fixture) addItem(t *testing.T, name string, qty int) *models.StockItem {
	t.Helper()
	item, err := f.ledger.AddOrRestock(context.Background(), f.owner, ledger.StockInput{
		Name: name, Quantity: qty, UnitPrice: 100, LowStockThreshold: 5,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) countUsage(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.UsageEvent{}).Count(&n).Error)
	return n
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "gold ring", ledger.NormalizeName("  Gold Ring "))
	assert.Equal(t, "gold ring", ledger.NormalizeName("GOLD RING"))
	assert.Equal(t, "", ledger.NormalizeName("   "))
	assert.Equal(t, "çay", ledger.NormalizeName(" ÇAY\t"))
}

func TestAddOrRestock(t *testing.T) {
	ctx := context.Background()

	t.Run("merges names differing by case", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: "Gold Ring", Quantity: 10, UnitPrice: 500.0, LowStockThreshold: 3})
		require.NoError(t, err)
		second, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: "gold ring", Quantity: 5, UnitPrice: 550.0, LowStockThreshold: 2})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "gold ring", second.Name)
		assert.Equal(t, 15, second.Quantity)
		assert.Equal(t, 550.0, second.UnitPrice)
		assert.Equal(t, 2, second.LowStockThreshold)

		stock, err := f.ledger.ListStock(ctx)
		require.NoError(t, err)
		assert.Len(t, stock, 1)
	})

	t.Run("sums every variant into one item", func(t *testing.T) {
		f := newFixture(t)

		names := []string{"Chain", " chain", "CHAIN ", "\tChAiN\n", "chain"}
		total := 0
		for i, n := range names {
			total += i + 1
			_, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: n, Quantity: i + 1, UnitPrice: 1, LowStockThreshold: 5})
			require.NoError(t, err)
		}

		stock, err := f.ledger.ListStock(ctx)
		require.NoError(t, err)
		require.Len(t, stock, 1)
		assert.Equal(t, "chain", stock[0].Name)
		assert.Equal(t, total, stock[0].Quantity)
	})

	t.Run("matches an item renamed through edit", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "bangle", 1)

		_, err := f.ledger.EditStock(ctx, f.owner, item.ID, ledger.StockInput{Name: "Bangle", Quantity: 4, UnitPrice: 9, LowStockThreshold: 1})
		require.NoError(t, err)

		merged, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: "BANGLE", Quantity: 6, UnitPrice: 10, LowStockThreshold: 2})
		require.NoError(t, err)
		assert.Equal(t, item.ID, merged.ID)
		assert.Equal(t, 10, merged.Quantity)
	})

	t.Run("matches edited names the database cannot fold", func(t *testing.T) {
		for _, edited := range []string{"ÇAY", "Bangle\t"} {
			f := newFixture(t)
			item := f.addItem(t, "placeholder", 1)

			_, err := f.ledger.EditStock(ctx, f.owner, item.ID, ledger.StockInput{Name: edited, Quantity: 2, UnitPrice: 9, LowStockThreshold: 1})
			require.NoError(t, err)

			merged, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: ledger.NormalizeName(edited), Quantity: 3, UnitPrice: 9, LowStockThreshold: 1})
			require.NoError(t, err)
			assert.Equal(t, item.ID, merged.ID, edited)
			assert.Equal(t, 5, merged.Quantity, edited)

			stock, err := f.ledger.ListStock(ctx)
			require.NoError(t, err)
			assert.Len(t, stock, 1, edited)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: "   ", Quantity: 1})
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}

func TestEditStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addItem(t, "earring", 7)

	edited, err := f.ledger.EditStock(ctx, f.owner, item.ID, ledger.StockInput{Name: "Earring Pair", Quantity: 2, UnitPrice: 75.5, LowStockThreshold: 4})
	require.NoError(t, err)
	assert.Equal(t, "Earring Pair", edited.Name)
	assert.Equal(t, 2, edited.Quantity)
	assert.Equal(t, 75.5, edited.UnitPrice)
	assert.Equal(t, 4, edited.LowStockThreshold)

	got, err := f.ledger.GetStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, edited.Name, got.Name)

	_, err = f.ledger.EditStock(ctx, f.owner, 9999, ledger.StockInput{Name: "x"})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addItem(t, "pendant", 5)

	_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteStock(ctx, f.owner, item.ID))

	_, err = f.ledger.GetStock(ctx, item.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.ErrorIs(t, f.ledger.DeleteStock(ctx, f.owner, item.ID), ledger.ErrNotFound)

	// History survives the delete with no item name to join.
	assert.EqualValues(t, 1, f.countUsage(t))
	d, err := f.ledger.ListDashboard(ctx, models.RoleOwner)
	require.NoError(t, err)
	require.Len(t, d.Usage, 1)
	assert.Equal(t, "", d.Usage[0].ItemName)
	assert.Equal(t, "Goldsure Staff", d.Usage[0].UserName)
}

func TestConsumeStock(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts and records event", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "coin", 10)

		ev, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, f.staff.UserID, ev.UserID)
		assert.Equal(t, item.ID, ev.StockItemID)
		assert.Equal(t, 4, ev.Quantity)

		got, err := f.ledger.GetStock(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Quantity)
	})

	t.Run("rejects request above on-hand quantity", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "coin", 10)

		_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 15)
		require.ErrorIs(t, err, ledger.ErrInsufficientStock)

		var insufficient *ledger.InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 15, insufficient.Requested)
		assert.Equal(t, 10, insufficient.Available)

		got, err := f.ledger.GetStock(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Quantity)
		assert.EqualValues(t, 0, f.countUsage(t))
	})

	t.Run("quantity three request five", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "stud", 3)

		_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 5)
		assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

		got, err := f.ledger.GetStock(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Quantity)
		assert.EqualValues(t, 0, f.countUsage(t))
	})

	t.Run("allows draining to zero", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "stud", 3)

		_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 3)
		require.NoError(t, err)
		got, err := f.ledger.GetStock(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "stud", 3)

		_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, 0)
		assert.ErrorIs(t, err, ledger.ErrValidation)
		_, err = f.ledger.ConsumeStock(ctx, f.staff, item.ID, -2)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("unknown item or account", func(t *testing.T) {
		f := newFixture(t)
		item := f.addItem(t, "stud", 3)

		_, err := f.ledger.ConsumeStock(ctx, f.staff, 4242, 1)
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		_, err = f.ledger.ConsumeStock(ctx, ledger.Actor{UserID: 777}, item.ID, 1)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
		assert.EqualValues(t, 0, f.countUsage(t))
	})
}

func TestConsumeStockConcurrent(t *testing.T) {
	cases := []struct {
		name     string
		onHand   int
		workers  int
		each     int
		wantOK   int
		wantLeft int
	}{
		{name: "units exhaust to zero", onHand: 10, workers: 25, each: 1, wantOK: 10, wantLeft: 0},
		{name: "remainder too small for next", onHand: 10, workers: 8, each: 3, wantOK: 3, wantLeft: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			item := f.addItem(t, "bar", tc.onHand)

			var (
				wg           sync.WaitGroup
				mu           sync.Mutex
				ok, rejected int
				unexpected   []error
			)
			for i := 0; i < tc.workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.ledger.ConsumeStock(ctx, f.staff, item.ID, tc.each)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, ledger.ErrInsufficientStock):
						rejected++
					default:
						unexpected = append(unexpected, err)
					}
				}()
			}
			wg.Wait()

			require.Empty(t, unexpected)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.workers-tc.wantOK, rejected)

			got, err := f.ledger.GetStock(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLeft, got.Quantity)
			assert.GreaterOrEqual(t, got.Quantity, 0)
			assert.EqualValues(t, tc.wantOK, f.countUsage(t))
		})
	}
}

// openShared opens a file-backed database the way a second process would.
func openShared(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(10000)&_txlock=immediate"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConsumeStockAcrossLedgers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "goldsure.db")

	dbA := openShared(t, path)
	require.NoError(t, database.Migrate(dbA))
	dbB := openShared(t, path)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	staff := models.User{Name: "Goldsure Staff", Email: "staff@goldsure.com", PasswordHash: string(hash), Role: models.RoleStaff}
	require.NoError(t, dbA.Create(&staff).Error)
	actor := ledger.Actor{UserID: staff.ID, Name: staff.Name, Role: staff.Role}

	ledgers := []*ledger.Ledger{ledger.New(dbA), ledger.New(dbB)}
	item, err := ledgers[0].AddOrRestock(ctx, actor, ledger.StockInput{Name: "coin", Quantity: 10, UnitPrice: 50, LowStockThreshold: 5})
	require.NoError(t, err)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok         int
		unexpected []error
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(l *ledger.Ledger) {
			defer wg.Done()
			_, err := l.ConsumeStock(ctx, actor, item.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ledger.ErrInsufficientStock):
			default:
				unexpected = append(unexpected, err)
			}
		}(ledgers[i%2])
	}
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 10, ok)

	var got models.StockItem
	require.NoError(t, dbB.First(&got, item.ID).Error)
	assert.Equal(t, 0, got.Quantity)

	var events int64
	require.NoError(t, dbA.Model(&models.UsageEvent{}).Count(&events).Error)
	assert.EqualValues(t, 10, events)
}

func TestConsumeStockGuardsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addItem(t, "anklet", 4)

	// Another writer drains the row between the read and the conditional decrement.
	var armed sync.Once
	err := f.db.Callback().Update().Before("gorm:update").Register("test:outside_writer", func(tx *gorm.DB) {
		if tx.Statement.Table != "stock_items" {
			return
		}
		armed.Do(func() {
			tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE stock_items SET quantity = 1 WHERE id = ?", item.ID)
		})
	})
	require.NoError(t, err)

	_, err = f.ledger.ConsumeStock(ctx, f.staff, item.ID, 3)
	var insufficient *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Requested)

	// The rollback discards the drained quantity along with the attempt.
	got, err := f.ledger.GetStock(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.EqualValues(t, 0, f.countUsage(t))
}

func TestListDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ring := f.addItem(t, "ring", 10)
	chain := f.addItem(t, "chain", 4) // below default threshold 5

	_, err := f.ledger.ConsumeStock(ctx, f.staff, ring.ID, 1)
	require.NoError(t, err)
	_, err = f.ledger.ConsumeStock(ctx, f.owner, chain.ID, 2)
	require.NoError(t, err)
	_, err = f.ledger.ConsumeStock(ctx, f.staff, ring.ID, 3)
	require.NoError(t, err)

	_, err = f.ledger.RecordBilling(ctx, f.staff, ledger.BillingInput{Name: "Asha", Item: "ring", Quantity: 1, Payment: 500})
	require.NoError(t, err)

	t.Run("owner sees joined usage newest first", func(t *testing.T) {
		d, err := f.ledger.ListDashboard(ctx, models.RoleOwner)
		require.NoError(t, err)

		require.Len(t, d.Usage, 3)
		assert.Equal(t, 3, d.Usage[0].Quantity)
		assert.Equal(t, "Goldsure Staff", d.Usage[0].UserName)
		assert.Equal(t, "ring", d.Usage[0].ItemName)

		assert.Equal(t, 2, d.Usage[1].Quantity)
		assert.Equal(t, "Goldsure Admin", d.Usage[1].UserName)
		assert.Equal(t, "chain", d.Usage[1].ItemName)

		assert.Equal(t, 1, d.Usage[2].Quantity)
		for i := 1; i < len(d.Usage); i++ {
			assert.True(t, !d.Usage[i].Date.After(d.Usage[i-1].Date), "usage must be newest first")
		}

		require.Len(t, d.LowStock, 1)
		assert.Equal(t, chain.ID, d.LowStock[0].ID)
		assert.Len(t, d.Stock, 2)
		assert.Len(t, d.Logs, 1)
	})

	t.Run("staff sees stock and logs only", func(t *testing.T) {
		d, err := f.ledger.ListDashboard(ctx, models.RoleStaff)
		require.NoError(t, err)
		assert.Len(t, d.Stock, 2)
		assert.Len(t, d.Logs, 1)
		assert.Empty(t, d.Usage)
		assert.Empty(t, d.LowStock)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.ledger.ListDashboard(ctx, models.UserRole("guest"))
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})
}

func TestRecordBilling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := ledger.BillingInput{Name: "Ravi", Mobile: "9876543210", Item: "gold coin", Quantity: 2, Payment: 1200.5, Note: "festival"}
	first, err := f.ledger.RecordBilling(ctx, f.staff, in)
	require.NoError(t, err)
	second, err := f.ledger.RecordBilling(ctx, f.staff, in)
	require.NoError(t, err)

	// No idempotency key: a resubmission is a second bill.
	assert.NotEqual(t, first.ID, second.ID)

	logs, err := f.ledger.ListBillingLog(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, first.ID, logs[1].ID)
	assert.Equal(t, "gold coin", logs[0].Item)
	assert.Equal(t, 1200.5, logs[0].Payment)

	got, err := f.ledger.GetBilling(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name)

	_, err = f.ledger.GetBilling(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.ledger.Authenticate(ctx, "admin@goldsure.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, user.Role)

	_, err = f.ledger.Authenticate(ctx, "admin@goldsure.com", "wrong")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)

	_, err = f.ledger.Authenticate(ctx, "nobody@goldsure.com", "secret")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)

	_, err = f.ledger.Authenticate(ctx, "ADMIN@goldsure.com", "secret")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials, "email match is exact")
}

func TestAuditTrail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item := f.addItem(t, "anklet", 5)
	_, err := f.ledger.AddOrRestock(ctx, f.owner, ledger.StockInput{Name: "Anklet", Quantity: 1, UnitPrice: 1, LowStockThreshold: 1})
	require.NoError(t, err)
	_, err = f.ledger.EditStock(ctx, f.owner, item.ID, ledger.StockInput{Name: "anklet", Quantity: 9, UnitPrice: 1, LowStockThreshold: 1})
	require.NoError(t, err)
	_, err = f.ledger.ConsumeStock(ctx, f.staff, item.ID, 1)
	require.NoError(t, err)
	_, err = f.ledger.ConsumeStock(ctx, f.staff, item.ID, 100)
	require.Error(t, err)
	require.NoError(t, f.ledger.DeleteStock(ctx, f.owner, item.ID))

	logs, err := f.ledger.AuditTrail(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 5, "rejected consume leaves no trace")

	actions := make([]models.AuditAction, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []models.AuditAction{
		models.AuditActionDelete,
		models.AuditActionConsume,
		models.AuditActionUpdate,
		models.AuditActionUpdate,
		models.AuditActionCreate,
	}, actions)

	limited, err := f.ledger.AuditTrail(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
