package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

func CreateUser(email, hashedPassword string, name *string) (int, error) {
	var id int
	err := DB.QueryRowx(`
		INSERT INTO users (email, hashed_password, name, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id`, email, hashedPassword, name).Scan(&id)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to create user")
	}
	return id, err
}

func GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := DB.Get(&u, `
		SELECT id, email, hashed_password, name, created_at, updated_at
		  FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

func GetUserByID(id int) (*model.User, error) {
	var u model.User
	err := DB.Get(&u, `
		SELECT id, email, hashed_password, name, created_at, updated_at
		  FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}
