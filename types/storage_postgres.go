package types

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"blocks-api/types/config"
	"blocks-api/types/dataclasses"
	"blocks-api/types/interfaces"
)

type PostgresStorage struct {
	db    *sql.DB
	table string
}

// NewPostgresStorage connects with the configured number of retries and makes
// sure the blocks table exists.
func NewPostgresStorage(ctx context.Context, storageConfig config.PostgresStorageConfig) (*PostgresStorage, error) {
	db, err := connectPostgres(ctx, storageConfig)
	if err != nil {
		return nil, err
	}

	storage := &PostgresStorage{
		db:    db,
		table: pq.QuoteIdentifier(storageConfig.Table),
	}

	if err := storage.migrate(ctx, storageConfig.Table); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

func connectPostgres(ctx context.Context, storageConfig config.PostgresStorageConfig) (*sql.DB, error) {
	attempts := storageConfig.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			config.GetLogger().Warnf(
				"Retrying database connection (attempt %d/%d) after error: %v",
				attempt+1, attempts, lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(storageConfig.ConnectRetryDelay):
			}
		}

		db, err := sql.Open("postgres", storageConfig.Url)
		if err != nil {
			lastErr = fmt.Errorf("failed to open database connection: %w", err)
			continue
		}
		if storageConfig.MaxOpenConns > 0 {
			db.SetMaxOpenConns(storageConfig.MaxOpenConns)
		}

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			lastErr = fmt.Errorf("failed to ping database: %w", err)
			continue
		}

		config.GetLogger().Infof("Database connection established")
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

func (s *PostgresStorage) migrate(ctx context.Context, table string) error {
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id       BIGSERIAL PRIMARY KEY,
		number   BIGINT NOT NULL,
		title    VARCHAR(255) NOT NULL DEFAULT '',
		content  TEXT NOT NULL DEFAULT ''
	);`, s.table)
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}

	createIndexSQL := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON %s (number, id);`,
		pq.QuoteIdentifier(table+"_number_idx"),
		s.table,
	)
	if _, err := s.db.ExecContext(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("failed to create %s index: %w", table, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (dataclasses.Block, error) {
	var block dataclasses.Block
	err := row.Scan(&block.Id, &block.Number, &block.Title, &block.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return block, interfaces.ErrBlockNotFound
	}

	return block, err
}

func (s *PostgresStorage) List(ctx context.Context) ([]dataclasses.Block, error) {
	rows, err := s.db.QueryContext(
		ctx,
		fmt.Sprintf("SELECT id, number, title, content FROM %s ORDER BY number, id", s.table),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]dataclasses.Block, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block row: %w", err)
		}
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

func (s *PostgresStorage) Get(ctx context.Context, id int64) (dataclasses.Block, error) {
	return scanBlock(s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT id, number, title, content FROM %s WHERE id = $1", s.table),
		id,
	))
}

func (s *PostgresStorage) Create(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error) {
	created, err := scanBlock(s.db.QueryRowContext(
		ctx,
		fmt.Sprintf(
			"INSERT INTO %s (number, title, content) VALUES ($1, $2, $3) RETURNING id, number, title, content",
			s.table,
		),
		block.Number, block.Title, block.Content,
	))
	if err != nil {
		return dataclasses.Block{}, fmt.Errorf("failed to create block: %w", err)
	}

	return created, nil
}

func (s *PostgresStorage) Update(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error) {
	return scanBlock(s.db.QueryRowContext(
		ctx,
		fmt.Sprintf(
			"UPDATE %s SET number = $2, title = $3, content = $4 WHERE id = $1 RETURNING id, number, title, content",
			s.table,
		),
		block.Id, block.Number, block.Title, block.Content,
	))
}

func (s *PostgresStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.table),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete block %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return interfaces.ErrBlockNotFound
	}

	return nil
}

func (s *PostgresStorage) GetStorageName() string {
	return "postgres"
}

// DropTable removes the blocks table. Used to reset state between test runs.
func (s *PostgresStorage) DropTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table))
	return err
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
