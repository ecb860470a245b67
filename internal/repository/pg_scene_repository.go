package repository

import (
	"context"
	"errors"
	"fmt"

	"scene-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgSceneRepository implements SceneRepository
var _ SceneRepository = (*pgSceneRepository)(nil)

type pgSceneRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgSceneRepository creates a new PostgreSQL-backed SceneRepository.
func NewPgSceneRepository(db DBTX, logger *zap.Logger) SceneRepository {
	return &pgSceneRepository{
		db:     db,
		logger: logger.Named("PgSceneRepo"),
	}
}

// sceneColumns - список колонок сцены в порядке сканирования scanScene.
const sceneColumns = `id, scene_id, "character", emotion, scene_text, background, next, scene_type,
	requires_ai, choices, context, metadata, background_image, character_image, created_at`

// scanScene сканирует строку сцены из результата запроса.
func scanScene(row pgx.Row) (*models.Scene, error) {
	scene := &models.Scene{}
	err := row.Scan(
		&scene.ID, &scene.SceneID, &scene.Character, &scene.Emotion, &scene.Text,
		&scene.Background, &scene.Next, &scene.Type, &scene.RequiresAI,
		&scene.Choices, &scene.Context, &scene.Metadata,
		&scene.BackgroundImage, &scene.CharacterImage, &scene.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return scene, nil
}

// GetBySceneID retrieves a scene by its content-addressed identifier.
func (r *pgSceneRepository) GetBySceneID(ctx context.Context, sceneID string) (*models.Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE scene_id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("sceneID", sceneID))

	scene, err := scanScene(r.db.QueryRow(ctx, query, sceneID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Scene not found", zap.String("sceneID", sceneID))
			return nil, models.ErrSceneNotFound
		}
		r.logger.Error("Failed to get scene from postgres", zap.Error(err), zap.String("sceneID", sceneID))
		return nil, fmt.Errorf("failed to get scene from postgres: %w", err)
	}
	return scene, nil
}

// insertSceneQuery вставляет сцену, молча пропуская конфликт по scene_id.
const insertSceneQuery = `INSERT INTO scenes
	(scene_id, "character", emotion, scene_text, background, next, scene_type,
	 requires_ai, choices, context, metadata, background_image, character_image)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (scene_id) DO NOTHING`

// insertScene выполняет вставку сцены на переданном querier (пул или транзакция).
func insertScene(ctx context.Context, q DBTX, scene *models.Scene) (inserted bool, err error) {
	cmdTag, err := q.Exec(ctx, insertSceneQuery,
		scene.SceneID, scene.Character, scene.Emotion, scene.Text, scene.Background,
		scene.Next, scene.Type, scene.RequiresAI, scene.Choices, scene.Context,
		scene.Metadata, scene.BackgroundImage, scene.CharacterImage,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// UpsertScene вставляет сцену либо возвращает существующую строку без изменений.
func (r *pgSceneRepository) UpsertScene(ctx context.Context, scene *models.Scene) (*models.Scene, error) {
	log := r.logger.With(zap.String("sceneID", scene.SceneID))

	inserted, err := insertScene(ctx, r.db, scene)
	if err != nil {
		log.Error("Failed to upsert scene", zap.Error(err))
		return nil, fmt.Errorf("failed to upsert scene: %w", err)
	}
	if !inserted {
		log.Debug("Scene already exists, returning stored row")
	}

	// Перечитываем строку в обоих случаях: при конфликте получаем
	// победившую версию, при вставке - серверные значения (id, created_at).
	return r.GetBySceneID(ctx, scene.SceneID)
}

// FindUnviewedScene возвращает сцену из единственной непросмотренной записи
// UserScene пользователя.
func (r *pgSceneRepository) FindUnviewedScene(ctx context.Context, userID uuid.UUID) (*models.Scene, error) {
	query := `SELECT s.id, s.scene_id, s."character", s.emotion, s.scene_text, s.background,
	                 s.next, s.scene_type, s.requires_ai, s.choices, s.context, s.metadata,
	                 s.background_image, s.character_image, s.created_at
	          FROM user_scenes us
	          JOIN scenes s ON s.scene_id = us.scene_id
	          WHERE us.user_id = $1 AND us.viewed = FALSE
	          LIMIT 1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", userID.String()))

	scene, err := scanScene(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSceneNotFound
		}
		r.logger.Error("Failed to find unviewed scene", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to find unviewed scene: %w", err)
	}
	return scene, nil
}

// attachUserQuery связывает пользователя со сценой; повторная привязка - no-op.
const attachUserQuery = `INSERT INTO user_scenes (user_id, scene_id, viewed)
	VALUES ($1, $2, FALSE)
	ON CONFLICT (user_id, scene_id) DO NOTHING`

// AttachUserToScene создает запись UserScene с viewed=false.
func (r *pgSceneRepository) AttachUserToScene(ctx context.Context, userID uuid.UUID, sceneID string) error {
	log := r.logger.With(zap.String("userID", userID.String()), zap.String("sceneID", sceneID))
	if _, err := r.db.Exec(ctx, attachUserQuery, userID, sceneID); err != nil {
		log.Error("Failed to attach user to scene", zap.Error(err))
		return fmt.Errorf("failed to attach user to scene: %w", err)
	}
	log.Debug("User attached to scene")
	return nil
}

// MarkSceneViewed помечает запись UserScene просмотренной.
func (r *pgSceneRepository) MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error {
	query := `UPDATE user_scenes SET viewed = TRUE WHERE user_id = $1 AND scene_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, userID, sceneID)
	if err != nil {
		r.logger.Error("Failed to mark scene viewed", zap.Error(err),
			zap.String("userID", userID.String()), zap.String("sceneID", sceneID))
		return fmt.Errorf("failed to mark scene viewed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// FillMissingImages обновляет только пустые image-поля сцены.
// COALESCE гарантирует, что уже сохраненная картинка не будет перезаписана.
func (r *pgSceneRepository) FillMissingImages(ctx context.Context, sceneID string, images models.SceneImages) (*models.Scene, error) {
	query := `UPDATE scenes
	          SET background_image = COALESCE(background_image, $2),
	              character_image  = COALESCE(character_image, $3)
	          WHERE scene_id = $1
	          RETURNING ` + sceneColumns
	log := r.logger.With(zap.String("sceneID", sceneID))

	scene, err := scanScene(r.db.QueryRow(ctx, query, sceneID, images.BackgroundImage, images.CharacterImage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSceneNotFound
		}
		log.Error("Failed to fill scene images", zap.Error(err))
		return nil, fmt.Errorf("failed to fill scene images: %w", err)
	}
	log.Debug("Scene images filled",
		zap.Bool("hasBackground", scene.BackgroundImage != nil),
		zap.Bool("hasCharacter", scene.CharacterImage != nil))
	return scene, nil
}

// CreateSceneWithUser вставляет сцену и привязку пользователя одной транзакцией.
// Проигравший конкурентную вставку откатывается на чтение победившей строки,
// но привязку пользователя выполняет в любом случае.
func (r *pgSceneRepository) CreateSceneWithUser(ctx context.Context, scene *models.Scene, userID uuid.UUID) (*models.Scene, error) {
	log := r.logger.With(zap.String("sceneID", scene.SceneID), zap.String("userID", userID.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin scene transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin scene transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := insertScene(ctx, tx, scene)
	if err != nil {
		log.Error("Failed to insert scene", zap.Error(err))
		return nil, fmt.Errorf("failed to insert scene: %w", err)
	}
	if !inserted {
		log.Info("Concurrent scene insert detected, reusing stored row")
	}

	stored, err := scanScene(tx.QueryRow(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE scene_id = $1`, scene.SceneID))
	if err != nil {
		log.Error("Failed to read stored scene", zap.Error(err))
		return nil, fmt.Errorf("failed to read stored scene: %w", err)
	}

	if _, err = tx.Exec(ctx, attachUserQuery, userID, scene.SceneID); err != nil {
		log.Error("Failed to attach user within scene transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to attach user within scene transaction: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit scene transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit scene transaction: %w", err)
	}

	log.Info("Scene stored with user attachment", zap.Bool("newScene", inserted))
	return stored, nil
}
