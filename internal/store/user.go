package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// UserStore manages operator accounts and their permissions. Password
// hashing happens before the store is called.
type UserStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, in UserInput, passwordHash []byte) (*model.User, error)
	Update(ctx context.Context, id int64, in UserInput) (*model.User, error)
	SetPassword(ctx context.Context, id int64, passwordHash []byte) error
	Deactivate(ctx context.Context, id int64) (*model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
	SetPermissions(ctx context.Context, id int64, names []string) (*model.User, error)

	ListPermissions(ctx context.Context) ([]model.Permission, error)
	GetPermission(ctx context.Context, name string) (*model.Permission, error)
	CreatePermission(ctx context.Context, p model.Permission) (*model.Permission, error)
}

// UserInput carries the editable profile of a user.
type UserInput struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return invalid("username", "must not be empty")
	}
	return nil
}

type userStore struct {
	base
}

func (s *userStore) List(ctx context.Context, activeOnly bool) ([]model.User, error) {
	q := s.db.WithContext(ctx).Preload("Permissions").Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (s *userStore) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&user, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get user %d", id), err)
	}
	return &user, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).
		Preload("Permissions").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, wrap("get user by username", err)
	}
	return &user, nil
}

func (s *userStore) Create(ctx context.Context, in UserInput, passwordHash []byte) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if len(passwordHash) == 0 {
		return nil, invalid("password", "must be set")
	}
	user := model.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: passwordHash,
		FullName:     in.FullName,
		Email:        in.Email,
		IsActive:     in.IsActive,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, user.Username, 0); err != nil {
			return err
		}
		return wrap("create user", tx.Create(&user).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) Update(ctx context.Context, id int64, in UserInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return wrap(fmt.Sprintf("get user %d", id), err)
		}
		username := strings.TrimSpace(in.Username)
		if err := usernameFree(tx, username, id); err != nil {
			return err
		}
		user.Username = username
		user.FullName = in.FullName
		user.Email = in.Email
		user.IsActive = in.IsActive
		return wrap("update user", tx.Save(&user).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) SetPassword(ctx context.Context, id int64, passwordHash []byte) error {
	if len(passwordHash) == 0 {
		return invalid("password", "must be set")
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return wrap("set password", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set password for user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userStore) Deactivate(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return wrap(fmt.Sprintf("get user %d", id), err)
		}
		user.IsActive = false
		return wrap("deactivate user", tx.Model(&user).Update("is_active", false).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user, its permission links and push subscriptions.
func (s *userStore) Delete(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return wrap(fmt.Sprintf("get user %d", id), err)
		}
		if err := tx.Model(&user).Association("Permissions").Clear(); err != nil {
			return wrap("clear permissions", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.PushSubscription{}).Error; err != nil {
			return wrap("delete push subscriptions", err)
		}
		return wrap("delete user", tx.Delete(&user).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPermissions replaces the user's permissions with the named ones.
func (s *userStore) SetPermissions(ctx context.Context, id int64, names []string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return wrap(fmt.Sprintf("get user %d", id), err)
		}

		var perms []*model.Permission
		if len(names) > 0 {
			if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
				return wrap("find permissions", err)
			}
		}
		if missing := missingNames(names, perms); len(missing) > 0 {
			return invalid("permissions", "unknown permissions %s", strings.Join(missing, ", "))
		}

		if err := tx.Model(&user).Association("Permissions").Replace(perms); err != nil {
			return wrap("replace permissions", err)
		}
		user.Permissions = perms
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := s.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, wrap("list permissions", err)
	}
	return perms, nil
}

func (s *userStore) GetPermission(ctx context.Context, name string) (*model.Permission, error) {
	var perm model.Permission
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&perm).Error; err != nil {
		return nil, wrap("get permission "+name, err)
	}
	return &perm, nil
}

func (s *userStore) CreatePermission(ctx context.Context, p model.Permission) (*model.Permission, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("name", "must not be empty")
	}
	if strings.TrimSpace(p.Module) == "" {
		return nil, invalid("module", "must not be empty")
	}
	p.ID = 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Permission{}).Where("name = ?", p.Name).Count(&n).Error; err != nil {
			return wrap("check permission name", err)
		}
		if n > 0 {
			return fmt.Errorf("permission %q: %w", p.Name, ErrConflict)
		}
		return wrap("create permission", tx.Create(&p).Error)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func usernameFree(tx *gorm.DB, username string, selfID int64) error {
	var n int64
	if err := tx.Model(&model.User{}).
		Where("username = ? AND id <> ?", username, selfID).
		Count(&n).Error; err != nil {
		return wrap("check username", err)
	}
	if n > 0 {
		return fmt.Errorf("username %q: %w", username, ErrConflict)
	}
	return nil
}

func missingNames(names []string, perms []*model.Permission) []string {
	found := make(map[string]bool, len(perms))
	for _, p := range perms {
		found[p.Name] = true
	}
	var missing []string
	for _, n := range names {
		if !found[n] {
			missing = append(missing, n)
		}
	}
	return missing
}
