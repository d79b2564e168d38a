package services

import (
	"fmt"
	"time"

	"github.com/denmor86/ya-questpoints/internal/models"
	"github.com/shopspring/decimal"
)

// Tier - множитель награды, действующий начиная с длины серии MinStreak
type Tier struct {
	MinStreak  int
	Multiplier decimal.Decimal
}

// уровни по убыванию длины серии
var multiplierTiers = []Tier{
	{MinStreak: 30, Multiplier: decimal.RequireFromString("2.5")},
	{MinStreak: 14, Multiplier: decimal.RequireFromString("2.0")},
	{MinStreak: 7, Multiplier: decimal.RequireFromString("1.5")},
}

// Multiplier возвращает множитель награды для длины серии
func Multiplier(streak int) decimal.Decimal {
	for _, tier := range multiplierTiers {
		if streak >= tier.MinStreak {
			return tier.Multiplier
		}
	}
	return decimal.NewFromInt(1)
}

// RewardFor считает награду за квест: floor(base * multiplier).
// Чек-ин и социальный квест из дневного набора всегда стоят fixed баллов.
func RewardFor(quest models.Quest, social bool, streak int, fixed int64) (int64, decimal.Decimal) {
	if social || quest.Kind == models.QuestCheckIn || quest.Kind == models.QuestSocial {
		return fixed, decimal.NewFromInt(1)
	}
	mult := Multiplier(streak)
	return decimal.NewFromInt(quest.BasePoints).Mul(mult).Floor().IntPart(), mult
}

// ContinueStreak продлевает серию при выполнении квеста в день day.
// Вчерашний квест увеличивает серию, сегодняшний её не меняет, иначе серия начинается заново.
// Возвращает false, если серия уже была засчитана сегодня.
func ContinueStreak(stats *models.StreakStats, day time.Time) bool {
	gap := -1
	if stats.LastQuestDate != nil {
		gap = models.DaysBetween(*stats.LastQuestDate, day)
	}
	switch {
	case gap == 1:
		stats.CurrentStreak++
	case gap == 0 && stats.CurrentStreak > 0:
		return false
	default:
		stats.CurrentStreak = 1
	}
	stats.LongestStreak = max(stats.LongestStreak, stats.CurrentStreak)
	stats.LastQuestDate = &day
	return true
}

// MilestoneKey - ключ вехи в awardedMilestones
func MilestoneKey(streak int) string {
	return fmt.Sprintf("streak_%d", streak)
}

// DueMilestone возвращает веху, которую серия только что достигла и которая ещё не выдавалась
func DueMilestone(stats models.StreakStats, milestones map[int]int64) (string, int64, bool) {
	points, ok := milestones[stats.CurrentStreak]
	if !ok || points <= 0 {
		return "", 0, false
	}
	key := MilestoneKey(stats.CurrentStreak)
	if stats.HasMilestone(key) {
		return "", 0, false
	}
	return key, points, true
}
