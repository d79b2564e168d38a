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
	SelectQuest  = `SELECT id, title, kind, base_points FROM quests WHERE id = $1;`
	DailyQuests  = `SELECT id, title, kind, base_points FROM quests
					WHERE active AND kind <> 'social'
					  AND (active_from IS NULL OR active_from <= $1)
					  AND (active_to IS NULL OR active_to >= $1)
					ORDER BY kind, id;`
	SocialQuests = `SELECT id, title, kind, base_points FROM quests WHERE active AND kind = 'social' ORDER BY id;`
)

type QuestDatabase struct {
	DB *Database
}

// Создание хранилища квестов
func NewQuestStorage(db *Database) QuestStorage {
	return &QuestDatabase{DB: db}
}

func (s *QuestDatabase) GetQuest(ctx context.Context, id string) (*models.Quest, error) {
	var q models.Quest
	err := s.DB.Pool.QueryRow(ctx, SelectQuest, id).Scan(&q.ID, &q.Title, &q.Kind, &q.BasePoints)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return &q, nil
}

// DailyQuests возвращает ежедневные квесты и чек-ин, активные в день day
func (s *QuestDatabase) DailyQuests(ctx context.Context, day time.Time) ([]models.Quest, error) {
	return s.query(ctx, DailyQuests, day)
}

// SocialQuests возвращает пул социальных квестов
func (s *QuestDatabase) SocialQuests(ctx context.Context) ([]models.Quest, error) {
	return s.query(ctx, SocialQuests)
}

func (s *QuestDatabase) query(ctx context.Context, query string, args ...any) ([]models.Quest, error) {
	rows, err := s.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quests: %w", err)
	}
	defer rows.Close()

	var quests []models.Quest
	for rows.Next() {
		var q models.Quest
		if err := rows.Scan(&q.ID, &q.Title, &q.Kind, &q.BasePoints); err != nil {
			return quests, fmt.Errorf("failed scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}
