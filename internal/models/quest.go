package models

// QuestKind - вид квеста
type QuestKind string

const (
	QuestDaily   QuestKind = "daily"
	QuestCheckIn QuestKind = "checkin"
	QuestSocial  QuestKind = "social"
)

// Quest - квест, за который начисляются баллы
type Quest struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Kind       QuestKind `json:"kind"`
	BasePoints int64     `json:"basePoints"`
}

// QuestResult - итог выполнения квеста
type QuestResult struct {
	QuestID       string  `json:"questId"`
	PointsEarned  int64   `json:"pointsEarned"`
	Multiplier    string  `json:"multiplier"`
	Streak        int     `json:"currentStreak"`
	LongestStreak int     `json:"longestStreak"`
	Milestone     *Award  `json:"milestone,omitempty"`
	DailyBonus    int64   `json:"dailyBonus,omitempty"`
	Balance       int64   `json:"points"`
	Entries       []Entry `json:"-"`
}

// Award - разовая веха серии
type Award struct {
	Key     string `json:"key"`
	Points  int64  `json:"points"`
	Granted bool   `json:"granted"`
	// причина, по которой веха не выдана (например, ErrInsufficientPool)
	Err error `json:"-"`
}

// Entry - краткая ссылка на созданную проводку
type Entry struct {
	ID     string
	Type   EntryType
	Amount int64
}

// TodayQuests - набор квестов пользователя на день
type TodayQuests struct {
	Daily     []Quest  `json:"daily"`
	Social    []Quest  `json:"social"`
	Completed []string `json:"completed"`
}

// Total возвращает количество квестов в дневном наборе
func (t TodayQuests) Total() int {
	return len(t.Daily) + len(t.Social)
}

// Find ищет квест в дневном наборе
func (t TodayQuests) Find(questID string) (quest Quest, social bool, ok bool) {
	for _, q := range t.Daily {
		if q.ID == questID {
			return q, false, true
		}
	}
	for _, q := range t.Social {
		if q.ID == questID {
			return q, true, true
		}
	}
	return Quest{}, false, false
}
