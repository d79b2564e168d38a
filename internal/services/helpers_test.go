package services

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
)

// memBooks - хранилище в памяти с той же семантикой единицы работы, что и PostgreSQL:
// изменения батча применяются целиком либо не применяются, уникальные начисления отклоняются.
type memBooks struct {
	mu          sync.Mutex
	now         func() time.Time
	pool        *models.PointPool
	wallets     map[string]*models.Wallet
	entries     []*models.LedgerEntry
	withdrawals map[string]*models.Withdrawal
	accounts    map[string]*models.BankAccount
	quests      []models.Quest
	cancelled   map[models.EntityRef]string
	// ошибка, которую вернёт следующий Apply
	failApply error
}

func newMemBooks(now func() time.Time) *memBooks {
	return &memBooks{
		now:         now,
		wallets:     make(map[string]*models.Wallet),
		withdrawals: make(map[string]*models.Withdrawal),
		accounts:    make(map[string]*models.BankAccount),
		cancelled:   make(map[models.EntityRef]string),
	}
}

func (m *memBooks) storage() storage.Storage {
	return storage.Storage{Ledger: m, Wallets: m, Withdrawals: m, Quests: m}
}

// seedPool пополняет пул напрямую
func (m *memBooks) seedPool(total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.ensurePool()
	p.TotalPoints += total
	p.AvailablePoints = max(0, p.TotalPoints-p.UsedPoints)
}

// seedIssued отмечает баллы выданными пользователям, чтобы их можно было вернуть в пул
func (m *memBooks) seedIssued(points int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.ensurePool()
	p.TotalPoints += points
	p.UsedPoints += points
	p.AvailablePoints = max(0, p.TotalPoints-p.UsedPoints)
}

// seedWallet начисляет баллы через завершённую проводку, чтобы журнал и кошелёк совпадали
func (m *memBooks) seedWallet(userID string, points int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.ensureWallet(userID)
	w.Points += points
	m.entries = append(m.entries, &models.LedgerEntry{
		ID:              "seed-" + userID,
		Type:            models.EntryAdjustment,
		Amount:          points,
		UserID:          userID,
		RemainingPoints: w.Points,
		Status:          models.EntryCompleted,
		CreatedAt:       m.now(),
		UpdatedAt:       m.now(),
	})
}

func (m *memBooks) seedAccount(userID string, verified bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureWallet(userID)
	m.accounts[userID] = &models.BankAccount{
		UserID:        userID,
		BankCode:      "kbank",
		AccountNumber: "1234567890",
		HolderName:    "Test " + userID,
		Email:         userID + "@example.com",
		Verified:      verified,
	}
}

func (m *memBooks) walletPoints(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[userID]; ok {
		return w.Points
	}
	return 0
}

func (m *memBooks) poolState() models.PointPool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.ensurePool()
}

func (m *memBooks) entriesOf(userID string, entryType models.EntryType) []models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Type == entryType {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// ledgerSum - сумма завершённых проводок пользователя
func (m *memBooks) ledgerSum(userID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumCompleted(userID)
}

func (m *memBooks) ensurePool() *models.PointPool {
	if m.pool == nil {
		p := models.NewPointPool()
		m.pool = &p
	}
	return m.pool
}

func (m *memBooks) ensureWallet(userID string) *models.Wallet {
	w, ok := m.wallets[userID]
	if !ok {
		w = &models.Wallet{UserID: userID}
		m.wallets[userID] = w
	}
	return w
}

func (m *memBooks) findEntry(id string) *models.LedgerEntry {
	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (m *memBooks) sumCompleted(userID string) int64 {
	var sum int64
	for _, e := range m.entries {
		if e.UserID == userID && e.Status == models.EntryCompleted {
			sum += e.Amount
		}
	}
	return sum
}

// conflicts повторяет уникальные индексы журнала
func (m *memBooks) conflicts(e *models.LedgerEntry) bool {
	for _, other := range m.entries {
		if other.ID == e.ID {
			continue
		}
		switch {
		case e.Type == models.EntryNewUser && other.Type == models.EntryNewUser && other.UserID == e.UserID:
			return true
		case e.Type == models.EntryTouristQuest && other.Type == models.EntryTouristQuest && other.UserID == e.UserID &&
			e.Related != nil && other.Related != nil && other.Related.ID == e.Related.ID:
			return true
		case e.Meta(models.MetaChargeID) != "" && other.Meta(models.MetaChargeID) == e.Meta(models.MetaChargeID):
			return true
		}
	}
	return false
}

func cloneEntry(e *models.LedgerEntry) models.LedgerEntry {
	c := *e
	c.Metadata = maps.Clone(e.Metadata)
	return c
}

func cloneWallet(w *models.Wallet) *models.Wallet {
	c := *w
	c.CompletedQuests = slices.Clone(w.CompletedQuests)
	c.PinnedSocialQuests = slices.Clone(w.PinnedSocialQuests)
	c.Streak.AwardedMilestones = slices.Clone(w.Streak.AwardedMilestones)
	return &c
}

// LedgerStorage

func (m *memBooks) Apply(_ context.Context, scope storage.Scope, fn storage.ApplyFunc) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApply != nil {
		err := m.failApply
		m.failApply = nil
		return nil, err
	}

	b := models.NewBatch(m.now())
	userID := scope.UserID
	if scope.WithdrawalID != "" {
		w, ok := m.withdrawals[scope.WithdrawalID]
		if !ok {
			return nil, storage.ErrWithdrawalNotFound
		}
		c := *w
		b.Withdrawal = &c
	}
	if scope.EntryID != "" {
		e := m.findEntry(scope.EntryID)
		if e == nil {
			return nil, storage.ErrEntryNotFound
		}
		c := cloneEntry(e)
		b.Pending = &c
		if userID == "" {
			userID = e.UserID
		}
	}
	if userID != "" {
		b.Wallet = cloneWallet(m.ensureWallet(userID))
		if scope.Holds {
			for _, w := range m.withdrawals {
				if w.Debitor() == userID && w.ID != scope.WithdrawalID &&
					(w.Settlement == models.SettlementReserved || w.Settlement == models.SettlementSettled) {
					b.PendingHolds += w.Points
				}
			}
		}
	}
	if scope.Pool {
		p := *m.ensurePool()
		b.Pool = &p
	}

	if err := fn(b); err != nil {
		return nil, err
	}

	for _, e := range b.Entries() {
		if m.conflicts(&e) {
			return nil, models.ErrAlreadyProcessed
		}
	}
	if b.PendingChanged() && m.conflicts(b.Pending) {
		return nil, models.ErrAlreadyProcessed
	}

	if b.WalletChanged() {
		m.wallets[b.Wallet.UserID] = cloneWallet(b.Wallet)
	}
	if b.PoolChanged() {
		p := *b.Pool
		m.pool = &p
	}
	for _, e := range b.Entries() {
		c := cloneEntry(&e)
		m.entries = append(m.entries, &c)
	}
	if b.PendingChanged() {
		*m.findEntry(b.Pending.ID) = cloneEntry(b.Pending)
	}
	if w := b.Opened(); w != nil {
		c := *w
		m.withdrawals[w.ID] = &c
	}
	if b.WithdrawalChanged() {
		c := *b.Withdrawal
		m.withdrawals[c.ID] = &c
	}
	return b, nil
}

func (m *memBooks) GetPool(_ context.Context) (*models.PointPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *m.ensurePool()
	return &p, nil
}

func (m *memBooks) GetEntry(_ context.Context, id string) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.findEntry(id)
	if e == nil {
		return nil, storage.ErrEntryNotFound
	}
	c := cloneEntry(e)
	return &c, nil
}

func (m *memBooks) FindEntryByMeta(_ context.Context, key string, value string) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Meta(key) == value {
			c := cloneEntry(e)
			return &c, nil
		}
	}
	return nil, storage.ErrEntryNotFound
}

func (m *memBooks) ListUserEntries(_ context.Context, userID string, limit int, offset int) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LedgerEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, cloneEntry(m.entries[i]))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memBooks) ListPendingEntries(_ context.Context, entryType models.EntryType, olderThan time.Time, limit int) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range m.entries {
		if e.Status == models.EntryPending && e.Type == entryType && e.UpdatedAt.Before(olderThan) && e.Meta(models.MetaStale) == "" {
			out = append(out, cloneEntry(e))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memBooks) ListWalletDrift(_ context.Context) ([]models.WalletDrift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var drift []models.WalletDrift
	for id, w := range m.wallets {
		if sum := m.sumCompleted(id); sum != w.Points {
			drift = append(drift, models.WalletDrift{UserID: id, WalletPoints: w.Points, LedgerPoints: sum})
		}
	}
	sort.Slice(drift, func(i, j int) bool { return drift[i].UserID < drift[j].UserID })
	return drift, nil
}

func (m *memBooks) RepairWallet(_ context.Context, userID string) (*models.WalletDrift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	d := &models.WalletDrift{UserID: userID, WalletPoints: w.Points, LedgerPoints: m.sumCompleted(userID)}
	w.Points = d.LedgerPoints
	return d, nil
}

// WalletStorage

func (m *memBooks) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return cloneWallet(w), nil
}

func (m *memBooks) ResetDaily(_ context.Context, userID string, day time.Time) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.ensureWallet(userID)
	w.ResetIfNewDay(day)
	return cloneWallet(w), nil
}

func (m *memBooks) PinSocialQuests(_ context.Context, userID string, day time.Time, questIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	if !models.SameDay(w.PinnedDate, day) {
		w.PinnedSocialQuests = slices.Clone(questIDs)
		w.PinnedDate = &day
	}
	return slices.Clone(w.PinnedSocialQuests), nil
}

func (m *memBooks) GetBankAccount(_ context.Context, userID string) (*models.BankAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, storage.ErrBankAccountNotFound
	}
	c := *a
	return &c, nil
}

func (m *memBooks) SaveRecipientID(_ context.Context, userID string, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return storage.ErrBankAccountNotFound
	}
	a.RecipientID = recipientID
	return nil
}

// WithdrawalStorage

func (m *memBooks) GetWithdrawal(_ context.Context, id string) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, storage.ErrWithdrawalNotFound
	}
	c := *w
	return &c, nil
}

func (m *memBooks) FindByTransferID(_ context.Context, transferID string) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.withdrawals {
		if w.TransferID == transferID {
			c := *w
			return &c, nil
		}
	}
	return nil, storage.ErrWithdrawalNotFound
}

func (m *memBooks) ListUserWithdrawals(_ context.Context, userID string) ([]models.Withdrawal, error) {
	return m.filterWithdrawals(func(w *models.Withdrawal) bool { return w.UserID == userID }), nil
}

func (m *memBooks) ListByParent(_ context.Context, parent models.EntityRef, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	return m.filterWithdrawals(func(w *models.Withdrawal) bool {
		return w.Parent != nil && *w.Parent == parent && w.Status == status
	}), nil
}

func (m *memBooks) ListAwaitingTransfer(_ context.Context, limit int) ([]models.Withdrawal, error) {
	list := m.filterWithdrawals(func(w *models.Withdrawal) bool { return w.Settlement == models.SettlementSettled })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *memBooks) CancelParent(_ context.Context, parent models.EntityRef, cause string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cancelled[parent]; !ok {
		m.cancelled[parent] = cause
	}
	return nil
}

func (m *memBooks) IsParentCancelled(_ context.Context, parent models.EntityRef) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cancelled[parent]
	return ok, nil
}

func (m *memBooks) filterWithdrawals(match func(w *models.Withdrawal) bool) []models.Withdrawal {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range m.withdrawals {
		if match(w) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// QuestStorage

func (m *memBooks) GetQuest(_ context.Context, id string) (*models.Quest, error) {
	for _, q := range m.quests {
		if q.ID == id {
			c := q
			return &c, nil
		}
	}
	return nil, storage.ErrQuestNotFound
}

func (m *memBooks) DailyQuests(_ context.Context, _ time.Time) ([]models.Quest, error) {
	var out []models.Quest
	for _, q := range m.quests {
		if q.Kind != models.QuestSocial {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memBooks) SocialQuests(_ context.Context) ([]models.Quest, error) {
	var out []models.Quest
	for _, q := range m.quests {
		if q.Kind == models.QuestSocial {
			out = append(out, q)
		}
	}
	return out, nil
}

// clock - управляемое время для сценариев, растянутых на несколько дней
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// noShuffle сохраняет порядок квестов
func noShuffle(int, func(i, j int)) {}
