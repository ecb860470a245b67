package models

import (
	"time"

	"github.com/google/uuid"
)

// Уровни подписки пользователя.
const (
	// TierFree - бесплатный уровень, генерация сцен списывает стамину.
	TierFree = "FREE"
	// TierUnlimited - уровень без ограничений, стамина не списывается.
	TierUnlimited = "UNLIMITED"
)

// User represents a player in the system.
type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	DisplayName      string    `db:"display_name" json:"displayName"`
	Stamina          int       `db:"stamina" json:"stamina"`
	SubscriptionTier string    `db:"subscription_tier" json:"subscriptionTier"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// HasUnlimitedAccess возвращает true, если уровень подписки освобождает
// пользователя от списания стамины.
func (u *User) HasUnlimitedAccess() bool {
	return u.SubscriptionTier == TierUnlimited
}
