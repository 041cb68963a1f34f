//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/business"
	"github.com/sheetal/scoops-api/internal/domain/order"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgc, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("scoops"),
		tcpostgres.WithUsername("scoops"),
		tcpostgres.WithPassword("scoops"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(pgc); err != nil {
			log.Printf("terminate container: %v", err)
		}
	}()

	connStr, err := pgc.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}

	testPool, err = NewPool(ctx, connStr)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	return m.Run()
}

// --- Fixtures ---

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE admin_logs, order_items, orders, users, businesses RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedBusiness(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO businesses (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedAdmin(t *testing.T, username string) *user.User {
	t.Helper()
	var id int64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, 'x', 'ADMIN') RETURNING id`, username).Scan(&id)
	require.NoError(t, err)
	return &user.User{ID: id, Username: username, Role: user.RoleAdmin}
}

func countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	err := testPool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n)
	require.NoError(t, err)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pendingOrderFor(businessID int64, items ...order.OrderItem) *order.Order {
	return &order.Order{
		BusinessID:  businessID,
		Status:      order.StatusPending,
		Items:       items,
		TotalAmount: order.ComputeTotal(items),
	}
}

func seedOrder(t *testing.T, businessID int64) *order.Order {
	t.Helper()
	o := pendingOrderFor(businessID,
		order.OrderItem{Name: "Vanilla Tub", Quantity: 2, Price: dec("4.50")},
		order.OrderItem{Name: "Choc Scoop", Quantity: 5, Price: dec("1.20")},
	)
	require.NoError(t, NewOrderRepository(testPool).Create(context.Background(), o))
	return o
}

// --- Order creation ---

func TestOrderRepository_CreateCommitsHeaderItemsAndTotal(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	repo := NewOrderRepository(testPool)

	o := seedOrder(t, bizID)
	require.NotZero(t, o.ID)
	require.False(t, o.OrderDate.IsZero())
	for _, item := range o.Items {
		assert.NotZero(t, item.ID)
	}

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(dec("15.00")), "total: %s", got.TotalAmount)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.False(t, got.EmailSent)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Vanilla Tub", got.Items[0].Name, "items keep insertion order")
	assert.Equal(t, "Choc Scoop", got.Items[1].Name)
}

func TestOrderRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	repo := NewOrderRepository(testPool)

	// The second item violates the quantity CHECK constraint; the already
	// inserted header and first item must roll back with it.
	o := pendingOrderFor(bizID,
		order.OrderItem{Name: "Vanilla Tub", Quantity: 2, Price: dec("4.50")},
		order.OrderItem{Name: "Broken Row", Quantity: 0, Price: dec("1.20")},
	)
	err := repo.Create(context.Background(), o)
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, "orders"), "failed create must leave no header")
	assert.Equal(t, 0, countRows(t, "order_items"), "failed create must leave no items")
}

// --- Status + audit as a unit ---

func TestOrderRepository_UpdateStatusCommitsWithAuditRow(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	admin := seedAdmin(t, "admin")
	repo := NewOrderRepository(testPool)

	o := seedOrder(t, bizID)
	o.Status = order.StatusConfirmed
	o.EmailSent = true
	err := repo.UpdateStatus(context.Background(), o, admin, "Changed order #1 status: Pending → Confirmed")
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	assert.True(t, got.EmailSent)
	assert.Equal(t, 1, countRows(t, "admin_logs"))
}

func TestOrderRepository_UpdateStatusRollsBackWhenAuditFails(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	repo := NewOrderRepository(testPool)

	o := seedOrder(t, bizID)
	o.Status = order.StatusConfirmed
	o.EmailSent = true

	// The referenced admin row does not exist, so the audit insert violates
	// its foreign key. The status write must roll back with it: a status
	// change without its log entry is never observable.
	ghost := &user.User{ID: 9999, Username: "ghost", Role: user.RoleAdmin}
	err := repo.UpdateStatus(context.Background(), o, ghost, "Changed order #1 status: Pending → Confirmed")
	require.Error(t, err)

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status, "status must not commit without its audit row")
	assert.False(t, got.EmailSent)
	assert.Equal(t, 0, countRows(t, "admin_logs"))
}

// --- Item replacement as a unit ---

func TestOrderRepository_ReplaceItemsCommitsAsUnit(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	admin := seedAdmin(t, "admin")
	repo := NewOrderRepository(testPool)

	o := seedOrder(t, bizID)
	o.Items = []order.OrderItem{{Name: "Mango Sorbet", Quantity: 3, Price: dec("2.00")}}
	o.TotalAmount = order.ComputeTotal(o.Items)
	err := repo.ReplaceItems(context.Background(), o, admin, "Updated items for order #1")
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Mango Sorbet", got.Items[0].Name)
	assert.True(t, got.TotalAmount.Equal(dec("6.00")), "total: %s", got.TotalAmount)
	assert.Equal(t, 1, countRows(t, "admin_logs"))

	// Recomputing from the persisted items matches the stored total.
	assert.True(t, order.ComputeTotal(got.Items).Equal(got.TotalAmount))
}

func TestOrderRepository_ReplaceItemsRollsBackOnBadItem(t *testing.T) {
	resetTables(t)
	bizID := seedBusiness(t, "Sunny Scoops")
	admin := seedAdmin(t, "admin")
	repo := NewOrderRepository(testPool)

	o := seedOrder(t, bizID)
	o.Items = []order.OrderItem{{Name: "Broken Row", Quantity: 0, Price: dec("2.00")}}
	o.TotalAmount = order.ComputeTotal(o.Items)
	err := repo.ReplaceItems(context.Background(), o, admin, "Updated items for order #1")
	require.Error(t, err)

	got, err := repo.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2, "original items survive a failed replacement")
	assert.True(t, got.TotalAmount.Equal(dec("15.00")), "total: %s", got.TotalAmount)
	assert.Equal(t, 0, countRows(t, "admin_logs"))
}

// --- Registration ---

func TestUserRepository_RegistrationIsAtomic(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	first, err := repo.CreateBusinessAndCustomer(ctx,
		&business.Business{Name: "Sunny Scoops"},
		&user.User{Username: "sunny", PasswordHash: "x", Role: user.RoleCustomer},
	)
	require.NoError(t, err)
	require.NotNil(t, first.BusinessID)

	// A duplicate username loses to the unique index and rolls back its
	// business row too.
	_, err = repo.CreateBusinessAndCustomer(ctx,
		&business.Business{Name: "Copy Cones"},
		&user.User{Username: "sunny", PasswordHash: "x", Role: user.RoleCustomer},
	)
	require.ErrorIs(t, err, auth.ErrUsernameTaken)

	assert.Equal(t, 1, countRows(t, "users"))
	assert.Equal(t, 1, countRows(t, "businesses"), "orphan business must roll back")
}
