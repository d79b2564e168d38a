package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/denmor86/ya-questpoints/internal/config"
	"github.com/denmor86/ya-questpoints/internal/logger"
	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/denmor86/ya-questpoints/internal/storage"
	"go.uber.org/zap"
)

// метка бонуса за выполнение всех квестов дня
const dailyBonusReason = "daily_bonus"

type QuestService interface {
	TodayQuests(ctx context.Context, userID string) (*models.TodayQuests, error)
	CompleteQuest(ctx context.Context, userID string, questID string) (*models.QuestResult, error)
}

type Quests struct {
	Storage  storage.Storage
	Rewards  config.RewardsConfig
	Location *time.Location
	Now      func() time.Time
	// перемешивание пула социальных квестов при выборе дневного набора
	Shuffle func(n int, swap func(i, j int))
}

// Создание сервиса
func NewQuests(storage storage.Storage, rewards config.RewardsConfig, loc *time.Location) *Quests {
	return &Quests{
		Storage:  storage,
		Rewards:  rewards,
		Location: loc,
		Now:      time.Now,
		Shuffle:  rand.Shuffle,
	}
}

// TodayQuests возвращает дневной набор квестов пользователя.
// При смене дня прогресс сбрасывается одним условным обновлением, социальные квесты выбираются один раз и закрепляются.
func (s *Quests) TodayQuests(ctx context.Context, userID string) (*models.TodayQuests, error) {
	day := models.Day(s.Now(), s.Location)

	wallet, err := s.Storage.Wallets.ResetDaily(ctx, userID, day)
	if err != nil {
		logger.Error("Failed to reset daily progress", zap.Error(err))
		return nil, err
	}
	daily, err := s.Storage.Quests.DailyQuests(ctx, day)
	if err != nil {
		logger.Error("Failed to get daily quests", zap.Error(err))
		return nil, err
	}
	social, err := s.Storage.Quests.SocialQuests(ctx)
	if err != nil {
		logger.Error("Failed to get social quests", zap.Error(err))
		return nil, err
	}

	pinned := wallet.PinnedSocialQuests
	if !models.SameDay(wallet.PinnedDate, day) {
		// при гонке закрепится набор первого запроса, его и возвращает хранилище
		pinned, err = s.Storage.Wallets.PinSocialQuests(ctx, userID, day, s.pickSocial(social))
		if err != nil {
			logger.Error("Failed to pin social quests", zap.Error(err))
			return nil, err
		}
	}

	byID := make(map[string]models.Quest, len(social))
	for _, q := range social {
		byID[q.ID] = q
	}
	today := &models.TodayQuests{Daily: daily, Completed: wallet.CompletedQuests}
	for _, id := range pinned {
		if q, ok := byID[id]; ok {
			today.Social = append(today.Social, q)
		}
	}
	return today, nil
}

func (s *Quests) pickSocial(social []models.Quest) []string {
	ids := make([]string, len(social))
	for i, q := range social {
		ids[i] = q.ID
	}
	s.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > s.Rewards.SocialPerDay {
		ids = ids[:s.Rewards.SocialPerDay]
	}
	return ids
}

// CompleteQuest засчитывает выполнение квеста: продлевает серию, начисляет награду с множителем,
// выдаёт веху серии и бонус за все квесты дня. Всё применяется в одной транзакции.
func (s *Quests) CompleteQuest(ctx context.Context, userID string, questID string) (*models.QuestResult, error) {
	today, err := s.TodayQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	quest, social, ok := today.Find(questID)
	if !ok {
		return nil, models.ErrQuestNotAvailable
	}
	day := models.Day(s.Now(), s.Location)
	total := today.Total()

	result := &models.QuestResult{QuestID: questID}
	_, err = s.Storage.Ledger.Apply(ctx, storage.Scope{UserID: userID, Pool: true}, func(b *models.Batch) error {
		w := b.Wallet
		// день мог смениться между чтением набора и блокировкой кошелька
		w.ResetIfNewDay(day)
		if w.CompletedToday(questID) {
			return models.ErrAlreadyCompletedToday
		}

		advanced := ContinueStreak(&w.Streak, day)
		points, mult := RewardFor(quest, social, w.Streak.CurrentStreak, s.Rewards.FixedQuestPoints)
		if points > 0 {
			entry, err := b.Post(models.LedgerEntry{
				Type:     models.EntryReward,
				Amount:   points,
				UserID:   userID,
				Related:  &models.EntityRef{Kind: models.EntityQuest, ID: questID},
				Metadata: map[string]string{models.MetaMultiplier: mult.StringFixed(1)},
			}, models.PoolOpIssue)
			if err != nil {
				return err
			}
			result.Entries = append(result.Entries, models.Entry{ID: entry.ID, Type: entry.Type, Amount: entry.Amount})
		}
		w.CompletedQuests = append(w.CompletedQuests, questID)
		w.Streak.DailyQuestsCompletedToday++
		w.Streak.TotalQuestsCompleted++
		w.Streak.TotalPointsEarned += points
		result.PointsEarned = points
		result.Multiplier = mult.StringFixed(1)

		// веха проверяется только при изменении серии: пропущенная из-за пула не выдаётся повторно
		if key, bonus, due := DueMilestone(w.Streak, s.Rewards.Milestones); advanced && due {
			result.Milestone = &models.Award{Key: key, Points: bonus}
			entry, err := b.Post(models.LedgerEntry{
				Type:     models.EntryStreakMilestone,
				Amount:   bonus,
				UserID:   userID,
				Metadata: map[string]string{models.MetaMilestone: key},
			}, models.PoolOpUse)
			switch {
			case errors.Is(err, models.ErrInsufficientPool):
				// веха не выдаётся, основная награда остаётся
				result.Milestone.Err = err
			case err != nil:
				return err
			default:
				w.Streak.AddMilestone(key)
				w.Streak.TotalPointsEarned += bonus
				result.Milestone.Granted = true
				result.Entries = append(result.Entries, models.Entry{ID: entry.ID, Type: entry.Type, Amount: entry.Amount})
			}
		}

		if s.Rewards.DailyBonus > 0 && w.Streak.DailyQuestsCompletedToday >= total && !models.SameDay(w.DailyBonusDate, day) {
			entry, err := b.Post(models.LedgerEntry{
				Type:     models.EntryReward,
				Amount:   s.Rewards.DailyBonus,
				UserID:   userID,
				Metadata: map[string]string{models.MetaReason: dailyBonusReason},
			}, models.PoolOpIssue)
			if err != nil {
				return err
			}
			w.DailyBonusDate = &day
			w.Streak.TotalPointsEarned += entry.Amount
			result.DailyBonus = entry.Amount
			result.Entries = append(result.Entries, models.Entry{ID: entry.ID, Type: entry.Type, Amount: entry.Amount})
		}

		b.TouchWallet()
		result.Streak = w.Streak.CurrentStreak
		result.LongestStreak = w.Streak.LongestStreak
		result.Balance = w.Points
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrAlreadyCompletedToday) {
			logger.Error("Failed to complete quest", zap.Error(err))
		}
		return nil, err
	}
	if result.Milestone != nil && !result.Milestone.Granted {
		logger.Warnw("Streak milestone skipped", "user", userID, "milestone", result.Milestone.Key, zap.Error(result.Milestone.Err))
	}
	return result, nil
}
