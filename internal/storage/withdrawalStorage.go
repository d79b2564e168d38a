package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	withdrawalColumns = `id::text, user_id, debit_user_id, parent_kind, parent_id, amount, points, status, settlement,
						 entry_id::text, bank_code, account_number, holder_name, recipient_id, transfer_id,
						 transfer_status, requires_manual_transfer, reason, processed_by, created_at, updated_at`
	SelectWithdrawal = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	LockWithdrawal   = SelectWithdrawal + ` FOR UPDATE;`
	SelectByTransfer = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE transfer_id = $1;`
	ListUserWithdrawals = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
						   WHERE user_id = $1 ORDER BY created_at DESC;`
	ListByParent = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
					WHERE parent_kind = $1 AND parent_id = $2 AND status = $3 ORDER BY created_at;`
	ListAwaitingTransfer = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
							WHERE settlement = 'settled' ORDER BY updated_at LIMIT $1;`
	InsertWithdrawal = `INSERT INTO withdrawal_requests (id, user_id, debit_user_id, parent_kind, parent_id, amount,
						   points, status, settlement, entry_id, bank_code, account_number, holder_name, recipient_id,
						   transfer_id, transfer_status, requires_manual_transfer, reason, processed_by, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);`
	UpdateWithdrawal = `UPDATE withdrawal_requests
						SET status = $2, settlement = $3, recipient_id = $4, transfer_id = $5, transfer_status = $6,
						    requires_manual_transfer = $7, reason = $8, processed_by = $9, updated_at = $10
						WHERE id = $1;`

	CancelParent = `INSERT INTO cancelled_entities (kind, id, cause) VALUES ($1, $2, $3)
					ON CONFLICT (kind, id) DO NOTHING;`
	IsParentCancelled = `SELECT EXISTS(SELECT 1 FROM cancelled_entities WHERE kind = $1 AND id = $2);`
)

type WithdrawalDatabase struct {
	DB *Database
}

// Создание хранилища заявок на вывод
func NewWithdrawalStorage(db *Database) WithdrawalStorage {
	return &WithdrawalDatabase{DB: db}
}

func (s *WithdrawalDatabase) GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	return scanWithdrawal(s.DB.Pool.QueryRow(ctx, SelectWithdrawal, id))
}

func (s *WithdrawalDatabase) FindByTransferID(ctx context.Context, transferID string) (*models.Withdrawal, error) {
	return scanWithdrawal(s.DB.Pool.QueryRow(ctx, SelectByTransfer, transferID))
}

func (s *WithdrawalDatabase) ListUserWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	return s.query(ctx, ListUserWithdrawals, userID)
}

func (s *WithdrawalDatabase) ListByParent(ctx context.Context, parent models.EntityRef, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	return s.query(ctx, ListByParent, parent.Kind, parent.ID, status)
}

// ListAwaitingTransfer возвращает заявки, выплата по которым отправлена, но не подтверждена
func (s *WithdrawalDatabase) ListAwaitingTransfer(ctx context.Context, limit int) ([]models.Withdrawal, error) {
	return s.query(ctx, ListAwaitingTransfer, limit)
}

func (s *WithdrawalDatabase) CancelParent(ctx context.Context, parent models.EntityRef, cause string) error {
	if _, err := s.DB.Pool.Exec(ctx, CancelParent, parent.Kind, parent.ID, cause); err != nil {
		return fmt.Errorf("failed to cancel %s %s: %w", parent.Kind, parent.ID, err)
	}
	return nil
}

func (s *WithdrawalDatabase) IsParentCancelled(ctx context.Context, parent models.EntityRef) (bool, error) {
	var cancelled bool
	if err := s.DB.Pool.QueryRow(ctx, IsParentCancelled, parent.Kind, parent.ID).Scan(&cancelled); err != nil {
		return false, fmt.Errorf("failed to check cancellation: %w", err)
	}
	return cancelled, nil
}

func (s *WithdrawalDatabase) query(ctx context.Context, query string, args ...any) ([]models.Withdrawal, error) {
	rows, err := s.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawals: %w", err)
	}
	defer rows.Close()

	var list []models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return list, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

func insertWithdrawal(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	var parentKind, parentID *string
	if w.Parent != nil {
		kind := string(w.Parent.Kind)
		parentKind, parentID = &kind, &w.Parent.ID
	}
	a := w.BankAccount
	_, err := tx.Exec(ctx, InsertWithdrawal, w.ID, w.UserID, w.Debitor(), parentKind, parentID, w.Amount, w.Points,
		w.Status, w.Settlement, w.EntryID, a.BankCode, a.AccountNumber, a.HolderName, w.RecipientID, w.TransferID,
		w.TransferStatus, w.RequiresManualTransfer, w.Reason, w.ProcessedBy, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}
	return nil
}

func updateWithdrawal(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	_, err := tx.Exec(ctx, UpdateWithdrawal, w.ID, w.Status, w.Settlement, w.RecipientID, w.TransferID,
		w.TransferStatus, w.RequiresManualTransfer, w.Reason, w.ProcessedBy, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transfer %s: %w", w.TransferID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update withdrawal: %w", err)
	}
	return nil
}

func scanWithdrawal(row rowScanner) (*models.Withdrawal, error) {
	var (
		w                    models.Withdrawal
		parentKind, parentID *string
	)
	err := row.Scan(&w.ID, &w.UserID, &w.DebitUserID, &parentKind, &parentID, &w.Amount, &w.Points, &w.Status,
		&w.Settlement, &w.EntryID, &w.BankAccount.BankCode, &w.BankAccount.AccountNumber, &w.BankAccount.HolderName,
		&w.RecipientID, &w.TransferID, &w.TransferStatus, &w.RequiresManualTransfer, &w.Reason, &w.ProcessedBy,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed scan withdrawal: %w", err)
	}
	if parentKind != nil && parentID != nil {
		w.Parent = &models.EntityRef{Kind: models.EntityKind(*parentKind), ID: *parentID}
	}
	w.BankAccount.UserID = w.UserID
	return &w, nil
}
