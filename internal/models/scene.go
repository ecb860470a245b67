package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Scene represents a single unit of narrative content: text, descriptors for
// the visuals, branching choices and optionally the generated image URLs.
// SceneID is a content-addressed hash assigned by the generator, so the same
// narrative branch produced for different users converges on one row.
type Scene struct {
	ID         uuid.UUID       `db:"id" json:"-"`
	SceneID    string          `db:"scene_id" json:"sceneId"`
	Character  string          `db:"character" json:"character"`
	Emotion    string          `db:"emotion" json:"emotion"`
	Text       string          `db:"scene_text" json:"text"`
	Background string          `db:"background" json:"background"`
	Next       string          `db:"next" json:"next,omitempty"`
	Type       string          `db:"scene_type" json:"type,omitempty"`
	RequiresAI bool            `db:"requires_ai" json:"requiresAI"`
	Choices    json.RawMessage `db:"choices" json:"choices,omitempty"`
	Context    json.RawMessage `db:"context" json:"context,omitempty"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`

	// Ссылки на сгенерированные изображения. nil, пока изображение
	// не сгенерировано (отсутствие картинки допустимо).
	BackgroundImage *string `db:"background_image" json:"backgroundImage"`
	CharacterImage  *string `db:"character_image" json:"characterImage"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HasAllImages возвращает true, если обе картинки сцены уже сгенерированы.
func (s *Scene) HasAllImages() bool {
	return s.BackgroundImage != nil && s.CharacterImage != nil
}

// UserScene - маркер прогресса: связывает пользователя со сценой и фиксирует,
// просмотрена ли она. Единственная непросмотренная запись пользователя
// является указателем "текущая сцена".
type UserScene struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	SceneID   string    `db:"scene_id" json:"sceneId"`
	Viewed    bool      `db:"viewed" json:"viewed"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SceneImages holds the generated image URLs for a scene. A nil field means
// the corresponding image was not generated (either not requested or failed).
type SceneImages struct {
	BackgroundImage *string `json:"backgroundImage"`
	CharacterImage  *string `json:"characterImage"`
}

// IsEmpty возвращает true, если не сгенерировано ни одной картинки.
func (i SceneImages) IsEmpty() bool {
	return i.BackgroundImage == nil && i.CharacterImage == nil
}
