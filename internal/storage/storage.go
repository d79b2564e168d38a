package storage

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/denmor86/ya-questpoints/internal/models"
)

// Scope - набор строк, блокируемых на время единицы работы.
// Порядок блокировки фиксирован: заявка на вывод, ожидающая проводка, кошелёк, пул.
type Scope struct {
	// кошелёк пользователя; если пусто и указан EntryID, берётся владелец проводки
	UserID string
	// блокировать пул
	Pool bool
	// ожидающая проводка для завершения
	EntryID string
	// заявка на вывод
	WithdrawalID string
	// посчитать удержания по открытым заявкам на вывод для кошелька UserID
	Holds bool
}

// ApplyFunc - изменения, выполняемые внутри транзакции
type ApplyFunc func(b *models.Batch) error

type LedgerStorage interface {
	Apply(ctx context.Context, scope Scope, fn ApplyFunc) (*models.Batch, error)
	GetPool(ctx context.Context) (*models.PointPool, error)
	GetEntry(ctx context.Context, id string) (*models.LedgerEntry, error)
	FindEntryByMeta(ctx context.Context, key string, value string) (*models.LedgerEntry, error)
	ListUserEntries(ctx context.Context, userID string, limit int, offset int) ([]models.LedgerEntry, error)
	ListPendingEntries(ctx context.Context, entryType models.EntryType, olderThan time.Time, limit int) ([]models.LedgerEntry, error)
	ListWalletDrift(ctx context.Context) ([]models.WalletDrift, error)
	RepairWallet(ctx context.Context, userID string) (*models.WalletDrift, error)
}

type WalletStorage interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	ResetDaily(ctx context.Context, userID string, day time.Time) (*models.Wallet, error)
	PinSocialQuests(ctx context.Context, userID string, day time.Time, questIDs []string) ([]string, error)
	GetBankAccount(ctx context.Context, userID string) (*models.BankAccount, error)
	SaveRecipientID(ctx context.Context, userID string, recipientID string) error
}

type WithdrawalStorage interface {
	GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error)
	FindByTransferID(ctx context.Context, transferID string) (*models.Withdrawal, error)
	ListUserWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error)
	ListByParent(ctx context.Context, parent models.EntityRef, status models.WithdrawalStatus) ([]models.Withdrawal, error)
	ListAwaitingTransfer(ctx context.Context, limit int) ([]models.Withdrawal, error)
	CancelParent(ctx context.Context, parent models.EntityRef, cause string) error
	IsParentCancelled(ctx context.Context, parent models.EntityRef) (bool, error)
}

type QuestStorage interface {
	GetQuest(ctx context.Context, id string) (*models.Quest, error)
	DailyQuests(ctx context.Context, day time.Time) ([]models.Quest, error)
	SocialQuests(ctx context.Context) ([]models.Quest, error)
}

type Storage struct {
	Ledger      LedgerStorage
	Wallets     WalletStorage
	Withdrawals WithdrawalStorage
	Quests      QuestStorage
}

// Создание хранилища
func NewStorage(db *Database) Storage {
	return Storage{
		Ledger:      NewLedgerStorage(db),
		Wallets:     NewWalletStorage(db),
		Withdrawals: NewWithdrawalStorage(db),
		Quests:      NewQuestStorage(db),
	}
}

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrQuestNotFound       = errors.New("quest not found")
	ErrBankAccountNotFound = errors.New("bank account not found")

	ErrAlreadyExists = errors.New("already exists")
)
