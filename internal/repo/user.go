package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/Skotchmaster/amilimetros/internal/hash"
	"github.com/Skotchmaster/amilimetros/internal/models"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

type UserRepo struct {
	base
	DB *gorm.DB
}

func NewUserRepo(db *gorm.DB, hub *watch.Hub) *UserRepo {
	return &UserRepo{base: newBase("user", hub), DB: db}
}

// unknownUserHash is compared against when the email is not registered so
// both failure paths cost one bcrypt comparison.
var unknownUserHash = sync.OnceValue(func() string {
	h, _ := hash.HashPassword("unknown-user-placeholder")
	return h
})

// Login returns the user whose email and password match. Unknown email and
// wrong password fail with the same ErrInvalidCredentials.
func (r *UserRepo) Login(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash.CheckPassword(unknownUserHash(), password)
		return nil, r.done("login", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, r.done("login", err)
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, r.done("login", ErrInvalidCredentials)
	}
	return &u, r.done("login", nil)
}

// Register creates a non-admin account and returns its id.
func (r *UserRepo) Register(ctx context.Context, name, email, phone, password string) (uint, error) {
	pw, err := hash.HashPassword(password)
	if err != nil {
		return 0, r.done("register", err)
	}

	u := models.User{Name: name, Email: email, Phone: phone, PasswordHash: pw}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		return tx.Create(&u).Error
	})
	if err != nil && !errors.Is(err, ErrEmailTaken) {
		// a concurrent registration can win the unique index
		if taken, lookupErr := emailTaken(r.DB.WithContext(ctx), email, 0); lookupErr == nil && taken {
			err = ErrEmailTaken
		}
	}
	if err = r.done("register", err); err != nil {
		return 0, err
	}
	r.notify(models.TableUsers)
	return u.ID, nil
}

func emailTaken(tx *gorm.DB, email string, except uint) (bool, error) {
	var n int64
	q := tx.Model(&models.User{}).Where("email = ?", email)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ChangePassword replaces the password after checking the current one.
func (r *UserRepo) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		return r.done("change_password", err)
	}
	if !hash.CheckPassword(u.PasswordHash, oldPassword) {
		return r.done("change_password", ErrWrongPassword)
	}
	pw, err := hash.HashPassword(newPassword)
	if err != nil {
		return r.done("change_password", err)
	}
	err = r.DB.WithContext(ctx).Model(&u).Update("password_hash", pw).Error
	return r.done("change_password", err)
}

// IsAdmin reads the admin flag. Any failure, including an unknown user,
// reads as false.
func (r *UserRepo) IsAdmin(ctx context.Context, userID uint) bool {
	var u models.User
	err := r.DB.WithContext(ctx).Select("is_admin").First(&u, userID).Error
	if r.done("is_admin", err) != nil {
		return false
	}
	return u.IsAdmin
}

func (r *UserRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, id).Error
	if err = r.done("get", err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err = r.done("get_by_email", err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := r.DB.WithContext(ctx).Order("id").Find(&out).Error
	if err = r.done("list", err); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser changes the profile fields of the account. The email must not
// belong to another account.
func (r *UserRepo) UpdateUser(ctx context.Context, id uint, name, email, phone string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		taken, err := emailTaken(tx, email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		u.Name, u.Email, u.Phone = name, email, phone
		return tx.Model(&u).Select("name", "email", "phone").Updates(&u).Error
	})
	if err = r.done("update", err); err != nil {
		return nil, err
	}
	r.notify(models.TableUsers)
	return &u, nil
}

// DeleteUser removes the account and its cart. Adoption forms keep their
// copy of the user's contact data.
func (r *UserRepo) DeleteUser(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err = r.done("delete", err); err != nil {
		return err
	}
	r.notify(models.TableUsers, models.TableCartItems)
	return nil
}
