package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	EnsurePool = `INSERT INTO point_pool (id) VALUES (1) ON CONFLICT (id) DO NOTHING;`
	SelectPool = `SELECT total_points, used_points, available_points, new_user_points, tourist_quest_points, last_updated, updated_by
				  FROM point_pool WHERE id = 1`
	LockPool   = SelectPool + ` FOR UPDATE;`
	UpdatePool = `UPDATE point_pool
				  SET total_points = $1, used_points = $2, available_points = $3,
				      new_user_points = $4, tourist_quest_points = $5, last_updated = $6, updated_by = $7
				  WHERE id = 1;`

	entryColumns = `id::text, type, amount, user_id, related_kind, related_id, remaining_points,
					pool_total, pool_used, pool_available, status, metadata, created_at, updated_at`
	SelectEntry     = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	LockEntry       = SelectEntry + ` FOR UPDATE;`
	SelectEntryMeta = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE metadata ->> $1 = $2 ORDER BY created_at LIMIT 1;`
	ListUserEntries = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE user_id = $1
					   ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
	ListPendingEntries = `SELECT ` + entryColumns + ` FROM ledger_entries
						  WHERE status = 'pending' AND type = $1 AND updated_at < $2 AND metadata->>'stale' IS NULL
						  ORDER BY created_at LIMIT $3;`
	InsertEntry = `INSERT INTO ledger_entries (id, type, amount, user_id, related_kind, related_id, remaining_points,
					   pool_total, pool_used, pool_available, status, metadata, created_at, updated_at)
				   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	UpdateEntry = `UPDATE ledger_entries
				   SET status = $2, remaining_points = $3, pool_total = $4, pool_used = $5, pool_available = $6,
				       metadata = $7, updated_at = $8
				   WHERE id = $1;`

	SumPendingHolds = `SELECT COALESCE(SUM(points), 0) FROM withdrawal_requests
					   WHERE debit_user_id = $1 AND settlement IN ('reserved', 'settled') AND id::text <> $2;`

	ListWalletDrift = `SELECT w.user_id, w.points, COALESCE(l.total, 0)
					   FROM wallets w
					   LEFT JOIN (
					       SELECT user_id, SUM(amount) AS total FROM ledger_entries
					       WHERE status = 'completed' AND user_id IS NOT NULL
					       GROUP BY user_id
					   ) l ON l.user_id = w.user_id
					   WHERE w.points <> COALESCE(l.total, 0)
					   ORDER BY w.user_id;`
	SumCompleted = `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1 AND status = 'completed';`
	SetWalletPoints = `UPDATE wallets SET points = $2, updated_at = NOW() WHERE user_id = $1;`
)

type LedgerDatabase struct {
	DB *Database
}

// Создание хранилища журнала
func NewLedgerStorage(db *Database) LedgerStorage {
	return &LedgerDatabase{DB: db}
}

// Apply блокирует строки из scope, выполняет fn и сохраняет изменения единицы работы в одной транзакции
func (s *LedgerDatabase) Apply(ctx context.Context, scope Scope, fn ApplyFunc) (*models.Batch, error) {
	var batch *models.Batch
	err := s.DB.InTx(ctx, "Apply", func(tx pgx.Tx) error {
		b := models.NewBatch(time.Now().UTC())
		userID := scope.UserID

		if scope.WithdrawalID != "" {
			w, err := scanWithdrawal(tx.QueryRow(ctx, LockWithdrawal, scope.WithdrawalID))
			if err != nil {
				return err
			}
			b.Withdrawal = w
		}
		if scope.EntryID != "" {
			e, err := scanEntry(tx.QueryRow(ctx, LockEntry, scope.EntryID))
			if err != nil {
				return err
			}
			b.Pending = e
			if userID == "" {
				userID = e.UserID
			}
		}
		if userID != "" {
			w, err := lockWallet(ctx, tx, userID)
			if err != nil {
				return err
			}
			b.Wallet = w
			if scope.Holds {
				if err := tx.QueryRow(ctx, SumPendingHolds, userID, scope.WithdrawalID).Scan(&b.PendingHolds); err != nil {
					return fmt.Errorf("failed to sum pending holds: %w", err)
				}
			}
		}
		if scope.Pool {
			pool, err := lockPool(ctx, tx)
			if err != nil {
				return err
			}
			b.Pool = pool
		}

		if err := fn(b); err != nil {
			return err
		}
		if err := persistBatch(ctx, tx, b); err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func persistBatch(ctx context.Context, tx pgx.Tx, b *models.Batch) error {
	if b.WalletChanged() {
		if err := updateWallet(ctx, tx, b.Wallet); err != nil {
			return err
		}
	}
	if b.PoolChanged() {
		p := b.Pool
		if _, err := tx.Exec(ctx, UpdatePool, p.TotalPoints, p.UsedPoints, p.AvailablePoints,
			p.NewUserPoints, p.TouristQuestPoints, p.LastUpdated, p.UpdatedBy); err != nil {
			return fmt.Errorf("failed to update pool: %w", err)
		}
	}
	for _, e := range b.Entries() {
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
	}
	if b.PendingChanged() {
		e := b.Pending
		total, used, available := snapshotColumns(e.PoolState)
		if _, err := tx.Exec(ctx, UpdateEntry, e.ID, e.Status, e.RemainingPoints, total, used, available,
			metadataOf(e), e.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update ledger entry: %w", err)
		}
	}
	if w := b.Opened(); w != nil {
		if err := insertWithdrawal(ctx, tx, w); err != nil {
			return err
		}
	}
	if b.WithdrawalChanged() {
		if err := updateWithdrawal(ctx, tx, b.Withdrawal); err != nil {
			return err
		}
	}
	return nil
}

func lockPool(ctx context.Context, tx pgx.Tx) (*models.PointPool, error) {
	// пул создаётся при первом обращении
	if _, err := tx.Exec(ctx, EnsurePool); err != nil {
		return nil, fmt.Errorf("failed to ensure pool: %w", err)
	}
	return scanPool(tx.QueryRow(ctx, LockPool))
}

func insertEntry(ctx context.Context, tx pgx.Tx, e models.LedgerEntry) error {
	var userID, relatedKind, relatedID *string
	if e.UserID != "" {
		userID = &e.UserID
	}
	if e.Related != nil {
		kind := string(e.Related.Kind)
		relatedKind, relatedID = &kind, &e.Related.ID
	}
	total, used, available := snapshotColumns(e.PoolState)
	_, err := tx.Exec(ctx, InsertEntry, e.ID, e.Type, e.Amount, userID, relatedKind, relatedID, e.RemainingPoints,
		total, used, available, e.Status, metadataOf(&e), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		// уникальные индексы: разовые начисления и один charge_id на проводку
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s entry: %w", e.Type, models.ErrAlreadyProcessed)
		}
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerDatabase) GetPool(ctx context.Context) (*models.PointPool, error) {
	if _, err := s.DB.Pool.Exec(ctx, EnsurePool); err != nil {
		return nil, fmt.Errorf("failed to ensure pool: %w", err)
	}
	return scanPool(s.DB.Pool.QueryRow(ctx, SelectPool))
}

func (s *LedgerDatabase) GetEntry(ctx context.Context, id string) (*models.LedgerEntry, error) {
	return scanEntry(s.DB.Pool.QueryRow(ctx, SelectEntry, id))
}

func (s *LedgerDatabase) FindEntryByMeta(ctx context.Context, key string, value string) (*models.LedgerEntry, error) {
	return scanEntry(s.DB.Pool.QueryRow(ctx, SelectEntryMeta, key, value))
}

func (s *LedgerDatabase) ListUserEntries(ctx context.Context, userID string, limit int, offset int) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, ListUserEntries, userID, limit, offset)
}

func (s *LedgerDatabase) ListPendingEntries(ctx context.Context, entryType models.EntryType, olderThan time.Time, limit int) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, ListPendingEntries, entryType, olderThan, limit)
}

func (s *LedgerDatabase) queryEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := s.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return entries, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListWalletDrift возвращает кошельки, баланс которых расходится с журналом
func (s *LedgerDatabase) ListWalletDrift(ctx context.Context) ([]models.WalletDrift, error) {
	rows, err := s.DB.Pool.Query(ctx, ListWalletDrift)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet drift: %w", err)
	}
	defer rows.Close()

	var drift []models.WalletDrift
	for rows.Next() {
		var d models.WalletDrift
		if err := rows.Scan(&d.UserID, &d.WalletPoints, &d.LedgerPoints); err != nil {
			return drift, fmt.Errorf("failed scan wallet drift: %w", err)
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}

// RepairWallet пересчитывает баланс кошелька по журналу под блокировкой строки
func (s *LedgerDatabase) RepairWallet(ctx context.Context, userID string) (*models.WalletDrift, error) {
	var drift models.WalletDrift
	err := s.DB.InTx(ctx, "RepairWallet", func(tx pgx.Tx) error {
		w, err := lockWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		drift.UserID = userID
		drift.WalletPoints = w.Points
		if err := tx.QueryRow(ctx, SumCompleted, userID).Scan(&drift.LedgerPoints); err != nil {
			return fmt.Errorf("failed to sum ledger: %w", err)
		}
		if drift.LedgerPoints == drift.WalletPoints {
			return nil
		}
		if _, err := tx.Exec(ctx, SetWalletPoints, userID, drift.LedgerPoints); err != nil {
			return fmt.Errorf("failed to repair wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &drift, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPool(row rowScanner) (*models.PointPool, error) {
	var p models.PointPool
	err := row.Scan(&p.TotalPoints, &p.UsedPoints, &p.AvailablePoints, &p.NewUserPoints,
		&p.TouristQuestPoints, &p.LastUpdated, &p.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	return &p, nil
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	var (
		e                      models.LedgerEntry
		userID                 *string
		relatedKind, relatedID *string
		total, used, available *int64
		metadata               map[string]string
	)
	err := row.Scan(&e.ID, &e.Type, &e.Amount, &userID, &relatedKind, &relatedID, &e.RemainingPoints,
		&total, &used, &available, &e.Status, &metadata, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed scan ledger entry: %w", err)
	}
	if userID != nil {
		e.UserID = *userID
	}
	if relatedKind != nil && relatedID != nil {
		e.Related = &models.EntityRef{Kind: models.EntityKind(*relatedKind), ID: *relatedID}
	}
	if total != nil && used != nil && available != nil {
		e.PoolState = &models.PoolSnapshot{TotalPoints: *total, UsedPoints: *used, AvailablePoints: *available}
	}
	e.Metadata = metadata
	return &e, nil
}

func snapshotColumns(s *models.PoolSnapshot) (total, used, available *int64) {
	if s == nil {
		return nil, nil, nil
	}
	return &s.TotalPoints, &s.UsedPoints, &s.AvailablePoints
}

func metadataOf(e *models.LedgerEntry) map[string]string {
	if e.Metadata == nil {
		return map[string]string{}
	}
	return e.Metadata
}
