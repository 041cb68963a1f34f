// Command seed-db provisions the initial admin account and, optionally, a
// demo business with a sample order. Safe to re-run: existing rows are left
// alone.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sheetal/scoops-api/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		adminUsername string
		adminPassword string
		demo          bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminUsername, "admin-username", "admin", "username for the initial admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the initial admin account (or SCOOPS_ADMIN_PASSWORD env)")
	flag.BoolVar(&demo, "demo", false, "also create a demo business with a sample order")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("SCOOPS_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or SCOOPS_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminUsername, adminPassword, demo); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminUsername, adminPassword string, demo bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAdmin(ctx, pool, adminUsername, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	if demo {
		if err := seedDemo(ctx, pool); err != nil {
			return errors.Wrap(err, "seed demo data")
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	tag, err := pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, 'ADMIN')
		 ON CONFLICT (username) DO NOTHING`,
		username, string(hash),
	)
	if err != nil {
		return errors.Wrap(err, "insert admin")
	}

	if tag.RowsAffected() == 0 {
		slog.Info("admin already exists", slog.String("username", username))
	} else {
		slog.Info("admin created", slog.String("username", username))
	}
	return nil
}

// seedDemo creates one demo business with a pending sample order so a fresh
// install has something to look at.
func seedDemo(ctx context.Context, pool *pgxpool.Pool) error {
	var existing int64
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM businesses WHERE name = 'Sunny Scoops'`,
	).Scan(&existing)
	if err != nil {
		return errors.Wrap(err, "check demo business")
	}
	if existing > 0 {
		slog.Info("demo business already exists")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var businessID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO businesses (name, contact_person, phone, email, address)
		 VALUES ('Sunny Scoops', 'Sam Sorbet', '555-0100', 'sam@sunnyscoops.example', '1 Beach Road')
		 RETURNING id`,
	).Scan(&businessID)
	if err != nil {
		return errors.Wrap(err, "insert demo business")
	}

	items := []struct {
		name     string
		quantity int
		price    decimal.Decimal
	}{
		{"Vanilla Tub", 2, decimal.RequireFromString("4.50")},
		{"Choc Scoop", 5, decimal.RequireFromString("1.20")},
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.price.Mul(decimal.NewFromInt(int64(it.quantity))))
	}

	var orderID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (business_id, status, total_amount, email_sent)
		 VALUES ($1, 'Pending', $2, FALSE)
		 RETURNING id`,
		businessID, total,
	).Scan(&orderID)
	if err != nil {
		return errors.Wrap(err, "insert demo order")
	}

	for _, it := range items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, item_name, quantity, price)
			 VALUES ($1, $2, $3, $4)`,
			orderID, it.name, it.quantity, it.price,
		)
		if err != nil {
			return errors.Wrap(err, "insert demo item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit demo data")
	}

	slog.Info("demo business created",
		slog.Int64("business_id", businessID),
		slog.Int64("order_id", orderID),
	)
	return nil
}
