package models

import "time"

// PointPool - модель общего пула баллов платформы (синглтон)
type PointPool struct {
	TotalPoints        int64
	UsedPoints         int64
	AvailablePoints    int64
	NewUserPoints      int64
	TouristQuestPoints int64
	LastUpdated        time.Time
	UpdatedBy          string
}

// PoolSnapshot - состояние пула на момент проводки
type PoolSnapshot struct {
	TotalPoints     int64 `json:"totalPoints"`
	UsedPoints      int64 `json:"usedPoints"`
	AvailablePoints int64 `json:"availablePoints"`
}

// PoolOp - операция над пулом, сопровождающая проводку
type PoolOp int

const (
	PoolOpNone PoolOp = iota
	// PoolOpAdd - пополнение резерва администратором
	PoolOpAdd
	// PoolOpUse - выдача баллов из резерва (вехи серии, бонусы новым пользователям)
	PoolOpUse
	// PoolOpRefund - возврат баллов в пул (вывод, комиссии, списания)
	PoolOpRefund
	// PoolOpIssue - эмиссия баллов сразу пользователю (награды за квесты, покупка)
	PoolOpIssue
)

// Значения по умолчанию при ленивом создании пула
const (
	DefaultNewUserPoints      = 100
	DefaultTouristQuestPoints = 10
)

// NewPointPool создаёт пустой пул с настройками по умолчанию
func NewPointPool() PointPool {
	return PointPool{
		NewUserPoints:      DefaultNewUserPoints,
		TouristQuestPoints: DefaultTouristQuestPoints,
	}
}

// Add увеличивает общее количество баллов
func (p *PointPool) Add(amount int64) error {
	if amount <= 0 {
		return ErrAmountInvalid
	}
	p.TotalPoints += amount
	p.recompute()
	return nil
}

// Use резервирует баллы пула под награду
func (p *PointPool) Use(amount int64) error {
	if amount <= 0 {
		return ErrAmountInvalid
	}
	if p.AvailablePoints < amount {
		return ErrInsufficientPool
	}
	p.UsedPoints += amount
	p.recompute()
	return nil
}

// Refund возвращает использованные баллы в пул
func (p *PointPool) Refund(amount int64) error {
	if amount <= 0 {
		return ErrAmountInvalid
	}
	if p.UsedPoints < amount {
		return ErrOverRefund
	}
	p.UsedPoints = max(0, p.UsedPoints-amount)
	p.recompute()
	return nil
}

// Issue выпускает новые баллы и сразу передаёт их пользователю: доступный остаток не меняется
func (p *PointPool) Issue(amount int64) error {
	if amount <= 0 {
		return ErrAmountInvalid
	}
	p.TotalPoints += amount
	p.UsedPoints += amount
	p.recompute()
	return nil
}

// Apply выполняет операцию op над пулом
func (p *PointPool) Apply(op PoolOp, amount int64) error {
	switch op {
	case PoolOpNone:
		return nil
	case PoolOpAdd:
		return p.Add(amount)
	case PoolOpUse:
		return p.Use(amount)
	case PoolOpRefund:
		return p.Refund(amount)
	case PoolOpIssue:
		return p.Issue(amount)
	}
	return ErrInvalidTransition
}

// Snapshot возвращает текущее состояние счётчиков
func (p PointPool) Snapshot() PoolSnapshot {
	return PoolSnapshot{
		TotalPoints:     p.TotalPoints,
		UsedPoints:      p.UsedPoints,
		AvailablePoints: p.AvailablePoints,
	}
}

func (p *PointPool) recompute() {
	p.AvailablePoints = max(0, p.TotalPoints-p.UsedPoints)
}
