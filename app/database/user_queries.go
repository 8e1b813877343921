package database

import (
	"database/sql"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	user := &models.User{}
	var email, fullName sql.NullString
	var role string
	query := `SELECT id, username, email, password, full_name, role, is_active, created_at, updated_at
			  FROM users WHERE username = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &email, &user.Password, &fullName,
		&role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.FullName = fullName.String
	user.Role = models.Role(role)
	return user, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	var email, fullName sql.NullString
	var role string
	query := `SELECT id, username, email, password, full_name, role, is_active, created_at, updated_at
			  FROM users WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &email, &user.Password, &fullName,
		&role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.FullName = fullName.String
	user.Role = models.Role(role)
	return user, nil
}

func CreateUser(db *sql.DB, user *models.User) error {
	query := `INSERT INTO users (username, email, password, full_name, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, is_active, created_at, updated_at`
	return db.QueryRow(query,
		user.Username, nullIfEmpty(user.Email), user.Password,
		nullIfEmpty(user.FullName), string(user.Role),
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}
