package models

import (
	"slices"
	"time"
)

// StreakStats - статистика серии выполнения квестов пользователя
type StreakStats struct {
	CurrentStreak             int        `json:"currentStreak"`
	LongestStreak             int        `json:"longestStreak"`
	LastQuestDate             *time.Time `json:"lastQuestDate,omitempty"`
	TotalQuestsCompleted      int        `json:"totalQuestsCompleted"`
	TotalPointsEarned         int64      `json:"totalPointsEarned"`
	DailyQuestsCompletedToday int        `json:"dailyQuestsCompletedToday"`
	AwardedMilestones         []string   `json:"awardedMilestones"`
	LastResetDate             *time.Time `json:"lastResetDate,omitempty"`
}

// HasMilestone проверяет, выдавалась ли веха
func (s *StreakStats) HasMilestone(key string) bool {
	return slices.Contains(s.AwardedMilestones, key)
}

// AddMilestone отмечает веху выданной
func (s *StreakStats) AddMilestone(key string) {
	if !s.HasMilestone(key) {
		s.AwardedMilestones = append(s.AwardedMilestones, key)
	}
}

// Wallet - баланс пользователя и учёт квестов
type Wallet struct {
	UserID string      `json:"userId"`
	Points int64       `json:"points"`
	Streak StreakStats `json:"streakStats"`
	// квесты, выполненные за текущий день
	CompletedQuests []string `json:"completedQuests"`
	// социальные квесты, закреплённые за пользователем на день
	PinnedSocialQuests []string   `json:"pinnedSocialQuests"`
	PinnedDate         *time.Time `json:"pinnedDate,omitempty"`
	DailyBonusDate     *time.Time `json:"dailyBonusDate,omitempty"`
}

// Day приводит момент времени к календарной дате в зоне loc.
// Дата хранится как полночь UTC, чтобы разница дат считалась без учёта переходов времени.
func Day(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает количество дней от from до to
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// SameDay сравнивает дату с днём day
func SameDay(date *time.Time, day time.Time) bool {
	return date != nil && date.Equal(day)
}

// ResetIfNewDay обнуляет дневной прогресс при смене дня
func (w *Wallet) ResetIfNewDay(day time.Time) bool {
	if SameDay(w.Streak.LastResetDate, day) {
		return false
	}
	w.Streak.DailyQuestsCompletedToday = 0
	w.CompletedQuests = nil
	w.Streak.LastResetDate = &day
	return true
}

// CompletedToday проверяет, выполнен ли квест сегодня
func (w *Wallet) CompletedToday(questID string) bool {
	return slices.Contains(w.CompletedQuests, questID)
}
