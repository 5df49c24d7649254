package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) (int, error)
	SetResetOTP(ctx context.Context, id uint, otpHash string, expiresAt time.Time) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	const op = "repositories/users/CreateUser"

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "repositories/users/GetUserByID", "id = ?", id)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "repositories/users/GetUserByEmail", "LOWER(email) = LOWER(?)", email)
}

func (r *PostgresUserRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.first(ctx, "repositories/users/GetUserByPhone", "phone = ?", phone)
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.first(ctx, "repositories/users/GetUserByFirebaseUID", "firebase_uid = ?", firebaseUID)
}

func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	const op = "repositories/users/GetUsersByIDs"

	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// UpdateProfile persists the editable profile fields and the Firebase link.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const op = "repositories/users/UpdateProfile"

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":         user.Name,
		"avatar":       user.Avatar,
		"bio":          user.Bio,
		"firebase_uid": user.FirebaseUID,
	})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdatePassword stores a new hash, clears any pending reset code and bumps the
// session epoch in one statement. It returns the new epoch.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) (int, error) {
	const op = "repositories/users/UpdatePassword"

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
			"password":       passwordHash,
			"reset_otp_hash": "",
			"reset_otp_exp":  nil,
			"session_epoch":  gorm.Expr("session_epoch + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Select("session_epoch").First(&user, id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return user.SessionEpoch, nil
}

func (r *PostgresUserRepository) SetResetOTP(ctx context.Context, id uint, otpHash string, expiresAt time.Time) error {
	const op = "repositories/users/SetResetOTP"

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"reset_otp_hash": otpHash,
		"reset_otp_exp":  expiresAt,
	})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SearchUsers searches for users by name or email
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	const op = "repositories/users/SearchUsers"

	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (r *PostgresUserRepository) first(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
