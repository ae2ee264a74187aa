package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nftwatch/sales-indexer/internal/domain"
	"github.com/nftwatch/sales-indexer/internal/store/schema"
)

// InMemoryDSN opens an ephemeral SQLite database, used by tests.
const InMemoryDSN = ":memory:"

// checkpointKey is the configuration row holding the next unscanned block.
const checkpointKey = "currentBlock"

// The DDL is fixed rather than auto-migrated so the database file stays
// byte-compatible with ledgers produced by earlier deployments.
const (
	createEventsDDL = `CREATE TABLE IF NOT EXISTS events (
		event_type text, from_wallet text, to_wallet text,
		token_id number, amount number, tx_date text, tx text,
		log_index number, platform text,
		UNIQUE(tx, log_index)
	);`
	createConfigurationDDL = `CREATE TABLE IF NOT EXISTS configuration (
		key text, value text,
		PRIMARY KEY (key)
	);`
)

type sqliteStore struct {
	db *gorm.DB
}

// Open opens (or creates) the ledger database at the given path, creates the
// two tables when absent and seeds the checkpoint from initialBlock on first
// run. The file is the sole durable state of the process. Only the indexer
// opens the database this way.
func Open(path string, initialBlock uint64) (Store, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := s.seedCheckpoint(initialBlock); err != nil {
		return nil, err
	}

	return s, nil
}

// OpenReader opens the ledger database for the query surface. Tables are
// still created when absent so an empty file answers queries, but the
// checkpoint is left untouched; seeding it here would shadow the indexer's
// configured start block.
func OpenReader(path string) (Store, error) {
	return open(path)
}

func open(path string) (*sqliteStore, error) {
	dsn := path
	if dsn != InMemoryDSN && !strings.Contains(dsn, "?") {
		// WAL lets statistics reads run concurrently with the scanner's writes
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite serializes writes; a single connection avoids lock contention
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	s := &sqliteStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *sqliteStore) createTables() error {
	if err := s.db.Exec(createEventsDDL).Error; err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	if err := s.db.Exec(createConfigurationDDL).Error; err != nil {
		return fmt.Errorf("failed to create configuration table: %w", err)
	}
	return nil
}

// seedCheckpoint writes the initial checkpoint row when none exists.
func (s *sqliteStore) seedCheckpoint(initialBlock uint64) error {
	ctx := context.Background()
	if _, err := s.GetCheckpoint(ctx); err != nil {
		if !errors.Is(err, domain.ErrNoCheckpoint) {
			return err
		}
		return s.SetCheckpoint(ctx, initialBlock)
	}

	return nil
}

// UpsertEvent inserts a ledger row keyed by (tx, log_index); on conflict only
// amount and platform are overwritten.
func (s *sqliteStore) UpsertEvent(ctx context.Context, event *domain.SaleEvent) error {
	row := schema.Event{
		EventType:  string(event.EventType),
		FromWallet: event.FromWallet,
		ToWallet:   event.ToWallet,
		TokenID:    event.TokenID,
		Amount:     event.AlternateValue,
		TxDate:     event.TxDate.UTC().Format(domain.TxDateLayout),
		Tx:         event.TxHash,
		LogIndex:   event.LogIndex,
		Platform:   string(event.Platform),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx"}, {Name: "log_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "platform"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert event %s/%d: %w", event.TxHash, event.LogIndex, err)
	}

	return nil
}

// GetCheckpoint returns the next unscanned block height.
func (s *sqliteStore) GetCheckpoint(ctx context.Context) (uint64, error) {
	var conf schema.Configuration
	err := s.db.WithContext(ctx).Where("key = ?", checkpointKey).First(&conf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNoCheckpoint
		}
		return 0, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	block, err := strconv.ParseUint(conf.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse checkpoint: %w", err)
	}

	return block, nil
}

// SetCheckpoint persists the next unscanned block height.
func (s *sqliteStore) SetCheckpoint(ctx context.Context, block uint64) error {
	conf := schema.Configuration{
		Key:   checkpointKey,
		Value: strconv.FormatUint(block, 10),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&conf).Error
	if err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	return nil
}

// OwnedTokens determines the current owner per token as the recipient of the
// chronologically latest event, ties resolved by the ledger's natural row
// order, and returns the tokens owned by the given wallet.
func (s *sqliteStore) OwnedTokens(ctx context.Context, wallet string) ([]int64, error) {
	const query = `SELECT DISTINCT token_id FROM
		(SELECT DISTINCT token_id,
			last_value(to_wallet) OVER (
				PARTITION BY token_id ORDER BY tx_date
				RANGE BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING) owner
		 FROM events) a
		WHERE lower(a.owner) = lower(?)
		ORDER BY token_id`

	var tokens []int64
	if err := s.db.WithContext(ctx).Raw(query, wallet).Scan(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to query owned tokens: %w", err)
	}

	return tokens, nil
}

// WalletActivity aggregates the rows a wallet participated in.
func (s *sqliteStore) WalletActivity(ctx context.Context, wallet string) (*WalletActivity, error) {
	const query = `SELECT
		count(*) transactions,
		COALESCE(sum(amount), 0) volume,
		COALESCE(min(tx_date), '') first_event,
		COALESCE(max(tx_date), '') last_event
	FROM events
	WHERE lower(to_wallet) = lower(?) OR lower(from_wallet) = lower(?)`

	var activity WalletActivity
	if err := s.db.WithContext(ctx).Raw(query, wallet, wallet).Scan(&activity).Error; err != nil {
		return nil, fmt.Errorf("failed to query wallet activity: %w", err)
	}

	return &activity, nil
}

// PlatformVolumesSince sums amounts per platform after the date floor.
// The bound is compared at date granularity, so the 24h window reaches back
// to midnight of the previous day. Deliberate: consumers expect the totals
// the original date-only comparison produced, and widening a window never
// breaks the monotonicity of the series.
func (s *sqliteStore) PlatformVolumesSince(ctx context.Context, bound time.Time) ([]PlatformVolume, error) {
	const query = `SELECT platform, sum(amount) volume
		FROM events
		WHERE tx_date > ?
		GROUP BY platform`

	var volumes []PlatformVolume
	err := s.db.WithContext(ctx).Raw(query, bound.UTC().Format("2006-01-02")).Scan(&volumes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query platform volumes: %w", err)
	}

	return volumes, nil
}

// LastEventDate returns the maximum tx_date across the ledger.
func (s *sqliteStore) LastEventDate(ctx context.Context) (string, error) {
	const query = `SELECT tx_date FROM events ORDER BY tx_date DESC LIMIT 1`

	var date string
	result := s.db.WithContext(ctx).Raw(query).Scan(&date)
	if result.Error != nil {
		return "", fmt.Errorf("failed to query last event date: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", domain.ErrNoEvents
	}

	return date, nil
}

// DailyVolumes returns per-day aggregates in chronological order. The
// looksrare exclusion applies to every series, wallet-filtered or not; the
// windowed platform statistics deliberately do not share it.
func (s *sqliteStore) DailyVolumes(ctx context.Context, wallet string) ([]DailyVolume, error) {
	query := `SELECT
		date(tx_date) date,
		sum(amount) volume,
		avg(amount) average_price,
		count(*) sales
	FROM events
	WHERE platform <> 'looksrare'`

	args := make([]interface{}, 0, 2)
	if wallet != "" {
		query += ` AND (lower(from_wallet) = lower(?) OR lower(to_wallet) = lower(?))`
		args = append(args, wallet, wallet)
	}
	query += `
	GROUP BY date(tx_date)
	ORDER BY date(tx_date)`

	var volumes []DailyVolume
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&volumes).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily volumes: %w", err)
	}

	return volumes, nil
}

// Close closes the underlying database handle.
func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
