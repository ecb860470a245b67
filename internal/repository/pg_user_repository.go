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

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db DBTX, logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, display_name, stamina, subscription_tier)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("username", user.Username))
	err := r.db.QueryRow(ctx, query, user.Username, user.DisplayName, user.Stamina, user.SubscriptionTier).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, display_name, stamina, subscription_tier, created_at, updated_at
	          FROM users WHERE id = $1`
	user := &models.User{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	err := r.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.DisplayName, &user.Stamina, &user.SubscriptionTier, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by ID", zap.String("id", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return user, nil
}

// SpendStamina атомарно списывает стамину и пишет запись в журнал.
// Проверка баланса и списание выполняются одним условным UPDATE, поэтому
// между проверкой и декрементом нет окна гонки.
func (r *pgUserRepository) SpendStamina(ctx context.Context, userID uuid.UUID, amount int, usageType string) error {
	log := r.logger.With(zap.String("userID", userID.String()), zap.Int("amount", amount), zap.String("usageType", usageType))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin stamina transaction", zap.Error(err))
		return fmt.Errorf("failed to begin stamina transaction: %w", err)
	}
	// Rollback безопасен и после успешного Commit
	defer tx.Rollback(ctx)

	updateQuery := `UPDATE users
	                SET stamina = stamina - $1, updated_at = CURRENT_TIMESTAMP
	                WHERE id = $2 AND stamina >= $1`
	cmdTag, err := tx.Exec(ctx, updateQuery, amount, userID)
	if err != nil {
		log.Error("Failed to decrement stamina", zap.Error(err))
		return fmt.Errorf("failed to decrement stamina: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Либо пользователя нет, либо баланса не хватило - различаем чтением.
		var stamina int
		err = tx.QueryRow(ctx, `SELECT stamina FROM users WHERE id = $1`, userID).Scan(&stamina)
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Attempted to spend stamina for non-existent user")
			return models.ErrUserNotFound
		}
		if err != nil {
			log.Error("Failed to check user balance", zap.Error(err))
			return fmt.Errorf("failed to check user balance: %w", err)
		}
		log.Info("Insufficient stamina", zap.Int("balance", stamina))
		return models.ErrInsufficientStamina
	}

	insertQuery := `INSERT INTO stamina_usages (user_id, amount, usage_type) VALUES ($1, $2, $3)`
	if _, err = tx.Exec(ctx, insertQuery, userID, amount, usageType); err != nil {
		log.Error("Failed to insert stamina usage record", zap.Error(err))
		return fmt.Errorf("failed to insert stamina usage record: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit stamina transaction", zap.Error(err))
		return fmt.Errorf("failed to commit stamina transaction: %w", err)
	}

	log.Info("Stamina spent successfully")
	return nil
}
