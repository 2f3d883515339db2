package repository

import (
	"context"
	"time"

	"inkpost/internal/models"

	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id uint, profile models.Profile) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	SetActive(ctx context.Context, id uint, active bool) error
	ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error)
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if field, ok := uniqueViolation(err); ok {
			return duplicateAccountError(field)
		}
		return err
	}
	return nil
}

func duplicateAccountError(field string) error {
	switch field {
	case "email":
		return models.NewDuplicateError("email", "Email is already registered")
	case "username":
		return models.NewDuplicateError("username", "Username is already taken")
	default:
		return models.NewDuplicateError(field, "Account already exists")
	}
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, notFoundOr(err, "Account", id)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, notFoundOr(err, "Account", email)
	}
	return &account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, notFoundOr(err, "Account", username)
	}
	return &account, nil
}

func (r *accountRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id uint, profile models.Profile) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"profile_first_name": profile.FirstName,
		"profile_last_name":  profile.LastName,
		"profile_bio":        profile.Bio,
		"profile_avatar":     profile.Avatar,
	})
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password_hash": hash})
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Account", id)
	}
	return nil
}

func (r *accountRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"role": role})
}

func (r *accountRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"active": active})
}

func (r *accountRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) updateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Account", id)
	}
	return nil
}
