package repository

import (
	"context"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)

	// IssueCode stores a fresh code hash and marks it usable.
	IssueCode(ctx context.Context, id int64, codeHash string) error
	// ConsumeCode atomically spends the code identified by codeHash.
	// It reports false when the code was no longer outstanding.
	ConsumeCode(ctx context.Context, id int64, codeHash string) (bool, error)
	// InvalidateCode spends whatever code is outstanding.
	InvalidateCode(ctx context.Context, id int64) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Select("username", "email", "first_name", "last_name", "bio", "role", "updated_at").
		Updates(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	// return nil rather than a zero-value user so callers never mistake it for a hit
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by username, optionally filtered by username prefix.
func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			q = q.Where(`LOWER(username) LIKE ? ESCAPE '\'`, prefixPattern(search))
		}
		return q
	}

	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := scope().
		Order("username ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) IssueCode(ctx context.Context, id int64, codeHash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"confirmation_code_hash": codeHash,
			"code_state":             models.CodeIssued,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) ConsumeCode(ctx context.Context, id int64, codeHash string) (bool, error) {
	// the conditional update is the single-use guarantee; concurrent callers race here
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND code_state = ? AND confirmation_code_hash = ?", id, models.CodeIssued, codeHash).
		Updates(map[string]any{
			"confirmation_code_hash": "",
			"code_state":             models.CodeConsumed,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) InvalidateCode(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"confirmation_code_hash": "",
			"code_state":             models.CodeConsumed,
		}).Error
}
