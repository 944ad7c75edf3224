package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/locaspot/booking-api/internal/model"
)

// UserRepo provides CRUD operations over the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, email, password_hash, role, is_active, name, phone, avatar, created_at, updated_at"

// Create inserts a user and fills in the generated ID and timestamps. The
// email is normalized to lower case; a duplicate maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, phone, avatar) VALUES (?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Role, u.Name, u.Phone, u.Avatar)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = created
	return nil
}

// GetByEmail fetches a user by normalized email. Returns ErrNotFound when
// no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email = ?", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg interface{}) (model.User, error) {
	var u model.User
	var phone, avatar sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Active,
			&u.Name, &phone, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	if avatar.Valid {
		a := avatar.String
		u.Avatar = &a
	}
	return u, nil
}

// List returns all users, newest first. Used by the admin dashboard view.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var phone, avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Active,
			&u.Name, &phone, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			u.Phone = phone.String
		}
		if avatar.Valid {
			a := avatar.String
			u.Avatar = &a
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserPatch names the fields an update may touch. Nil fields are dropped
// before the UPDATE so existing values stay untouched.
type UserPatch struct {
	Active *bool
	Name   *string
	Phone  *string
	Avatar *string
}

// Patch applies a partial update and returns the resulting record.
func (r *UserRepo) Patch(ctx context.Context, id uint64, p UserPatch) (model.User, error) {
	sets := []string{}
	args := []interface{}{}
	if p.Active != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *p.Active)
	}
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *p.Phone)
	}
	if p.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *p.Avatar)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return model.User{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Could also mean the values did not change; verify existence below.
			if _, err := r.GetByID(ctx, id); err != nil {
				return model.User{}, err
			}
		}
	}
	return r.GetByID(ctx, id)
}
