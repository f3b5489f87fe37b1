package storage

import (
	"chat-core/errors"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// User is what the directory knows about an account. Credentials live with
// the authentication collaborator, not here.
type User struct {
	ID        string    `json:"id"`
	Alias     string    `json:"alias"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository is the user directory the chat core consults for participant
// existence. Records are written by the external user-management collaborator
// through Register.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userKey(userID string) []byte {
	return []byte("user:" + userID)
}

func (u *UserRepository) Register(user User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(user.ID)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(userKey(user.ID), data)
	})
}

func (u *UserRepository) Exists(userID string) (bool, error) {
	err := u.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(userID))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
