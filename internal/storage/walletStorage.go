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
	EnsureWallet  = `INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`
	walletColumns = `user_id, points, current_streak, longest_streak, last_quest_date, total_quests_completed,
					 total_points_earned, daily_quests_completed_today, awarded_milestones, last_reset_date,
					 completed_quests, pinned_social_quests, pinned_date, daily_bonus_date`
	SelectWallet = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	LockWallet   = SelectWallet + ` FOR UPDATE;`
	UpdateWallet = `UPDATE wallets
					SET points = $2, current_streak = $3, longest_streak = $4, last_quest_date = $5,
					    total_quests_completed = $6, total_points_earned = $7, daily_quests_completed_today = $8,
					    awarded_milestones = $9, last_reset_date = $10, completed_quests = $11,
					    pinned_social_quests = $12, pinned_date = $13, daily_bonus_date = $14, updated_at = NOW()
					WHERE user_id = $1;`

	// условный сброс: из нескольких конкурентных запросов сбросит только первый
	ResetDaily = `UPDATE wallets
				  SET daily_quests_completed_today = 0, completed_quests = '{}', last_reset_date = $2, updated_at = NOW()
				  WHERE user_id = $1 AND last_reset_date IS DISTINCT FROM $2;`
	// закрепление социальных квестов на день; повторный вызов возвращает уже закреплённые
	PinSocial = `UPDATE wallets
				 SET pinned_social_quests = $3, pinned_date = $2, updated_at = NOW()
				 WHERE user_id = $1 AND pinned_date IS DISTINCT FROM $2
				 RETURNING pinned_social_quests;`
	SelectPinned = `SELECT pinned_social_quests FROM wallets WHERE user_id = $1;`

	SelectBankAccount = `SELECT user_id, bank_code, account_number, holder_name, email, verified, recipient_id
						 FROM bank_accounts WHERE user_id = $1;`
	UpdateRecipient = `UPDATE bank_accounts SET recipient_id = $2 WHERE user_id = $1;`
)

type WalletDatabase struct {
	DB *Database
}

// Создание хранилища кошельков
func NewWalletStorage(db *Database) WalletStorage {
	return &WalletDatabase{DB: db}
}

func (s *WalletDatabase) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	return scanWallet(s.DB.Pool.QueryRow(ctx, SelectWallet, userID))
}

// ResetDaily сбрасывает дневной прогресс, если он ещё не сброшен за день day, и возвращает актуальный кошелёк
func (s *WalletDatabase) ResetDaily(ctx context.Context, userID string, day time.Time) (*models.Wallet, error) {
	if _, err := s.DB.Pool.Exec(ctx, EnsureWallet, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}
	if _, err := s.DB.Pool.Exec(ctx, ResetDaily, userID, day); err != nil {
		return nil, fmt.Errorf("failed to reset daily progress: %w", err)
	}
	return s.GetWallet(ctx, userID)
}

func (s *WalletDatabase) PinSocialQuests(ctx context.Context, userID string, day time.Time, questIDs []string) ([]string, error) {
	var pinned []string
	err := s.DB.Pool.QueryRow(ctx, PinSocial, userID, day, nonNil(questIDs)).Scan(&pinned)
	if err == nil {
		return pinned, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to pin social quests: %w", err)
	}
	// за этот день уже закреплены
	if err := s.DB.Pool.QueryRow(ctx, SelectPinned, userID).Scan(&pinned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get pinned social quests: %w", err)
	}
	return pinned, nil
}

func (s *WalletDatabase) GetBankAccount(ctx context.Context, userID string) (*models.BankAccount, error) {
	var a models.BankAccount
	err := s.DB.Pool.QueryRow(ctx, SelectBankAccount, userID).Scan(&a.UserID, &a.BankCode, &a.AccountNumber,
		&a.HolderName, &a.Email, &a.Verified, &a.RecipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &a, nil
}

func (s *WalletDatabase) SaveRecipientID(ctx context.Context, userID string, recipientID string) error {
	tag, err := s.DB.Pool.Exec(ctx, UpdateRecipient, userID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to save recipient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

// кошелёк создаётся при первой блокировке
func lockWallet(ctx context.Context, tx pgx.Tx, userID string) (*models.Wallet, error) {
	if _, err := tx.Exec(ctx, EnsureWallet, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}
	return scanWallet(tx.QueryRow(ctx, LockWallet, userID))
}

func updateWallet(ctx context.Context, tx pgx.Tx, w *models.Wallet) error {
	st := w.Streak
	_, err := tx.Exec(ctx, UpdateWallet, w.UserID, w.Points, st.CurrentStreak, st.LongestStreak, st.LastQuestDate,
		st.TotalQuestsCompleted, st.TotalPointsEarned, st.DailyQuestsCompletedToday, nonNil(st.AwardedMilestones),
		st.LastResetDate, nonNil(w.CompletedQuests), nonNil(w.PinnedSocialQuests), w.PinnedDate, w.DailyBonusDate)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

func scanWallet(row rowScanner) (*models.Wallet, error) {
	var w models.Wallet
	st := &w.Streak
	err := row.Scan(&w.UserID, &w.Points, &st.CurrentStreak, &st.LongestStreak, &st.LastQuestDate,
		&st.TotalQuestsCompleted, &st.TotalPointsEarned, &st.DailyQuestsCompletedToday, &st.AwardedMilestones,
		&st.LastResetDate, &w.CompletedQuests, &w.PinnedSocialQuests, &w.PinnedDate, &w.DailyBonusDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed scan wallet: %w", err)
	}
	return &w, nil
}

// TEXT[] NOT NULL не принимает NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
