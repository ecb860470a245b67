package models

import (
	"time"

	"github.com/google/uuid"
)

// Стоимость операций в единицах стамины.
const (
	// StaminaCostSceneGeneration - фиксированная цена генерации новой сцены.
	StaminaCostSceneGeneration = 10
)

// Типы списаний для журнала использования стамины.
const (
	UsageTypeSceneGeneration = "SCENE_GENERATION"
)

// StaminaUsage - запись журнала списаний стамины. Записи только добавляются,
// никогда не изменяются.
type StaminaUsage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Amount    int       `db:"amount" json:"amount"`
	UsageType string    `db:"usage_type" json:"usageType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
