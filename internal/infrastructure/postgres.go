package infrastructure

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

// ConnectWithRetry keeps trying to reach the queue store before giving up.
// Bot sessions must not start against an unreachable store, so startup
// blocks here; exhausting the attempts is the one fatal startup condition.
func ConnectWithRetry(connString string, attempts int, delay time.Duration) (*PostgresClient, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		client, err := NewPostgresClient(connString)
		if err == nil {
			if i > 0 {
				log.Printf("[store] reachable after %d attempts", i+1)
			}
			return client, nil
		}
		lastErr = err
		if i%5 == 0 {
			log.Printf("[store] not ready yet (attempt %d/%d): %v", i+1, attempts, err)
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("store unreachable after %d attempts: %w", attempts, lastErr)
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Owners Table (shop accounts / tenants)
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS owners (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			shop_name VARCHAR(255) NOT NULL DEFAULT 'Barber Shop',
			bot_token VARCHAR(255),
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create owners table: %w", err)
	}

	// Bookings Table (queue tickets)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES owners(id),
			num INT NOT NULL,
			name VARCHAR(255),
			tel VARCHAR(50),
			service VARCHAR(255),
			barber VARCHAR(255),
			time VARCHAR(20),
			status VARCHAR(20) NOT NULL DEFAULT 'WAITING',
			chat_id BIGINT,
			notified INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings(owner_id);")
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_bookings_chat ON bookings(chat_id);")

	// Barbers Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS barbers (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES owners(id),
			name VARCHAR(255) NOT NULL,
			is_active BOOLEAN DEFAULT TRUE
		);
	`)
	if err != nil {
		return fmt.Errorf("create barbers table: %w", err)
	}

	// Services Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS services (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES owners(id),
			name VARCHAR(255) NOT NULL,
			price INT NOT NULL DEFAULT 0,
			duration VARCHAR(20) DEFAULT '30 min'
		);
	`)
	if err != nil {
		return fmt.Errorf("create services table: %w", err)
	}

	// Per-owner Settings Table (work_start, work_end, slot_interval, address)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES owners(id),
			key VARCHAR(64) NOT NULL,
			value TEXT,
			UNIQUE (owner_id, key)
		);
	`)
	if err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}

	// Reminders Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reminders (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES owners(id),
			chat_id BIGINT NOT NULL,
			barber VARCHAR(255),
			remind_at TIMESTAMP NOT NULL,
			is_sent INT NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("create reminders table: %w", err)
	}

	var count int
	if err := p.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM owners").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		log.Println("Database initialized. Owners table empty. Shops register via the HTTP API.")
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
