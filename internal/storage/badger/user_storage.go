package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// UserStorage implements the UserStorage interface for Badger
type UserStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserStorage creates a new UserStorage instance
func NewUserStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserStorage {
	return &UserStorage{
		db:     db,
		logger: logger,
	}
}

func (s *UserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	user.UserName = strings.ToLower(strings.TrimSpace(user.UserName))
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badger.Txn) error {
		var existing []models.User
		query := badgerhold.Where("UserName").Eq(user.UserName).Index("UserName")
		if err := store.TxFind(tx, &existing, query); err != nil {
			return err
		}
		if len(existing) > 0 {
			return interfaces.ErrUserExists
		}
		return store.TxInsert(tx, user.ID, user)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrUserExists) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("user_name", user.UserName).Str("role", string(user.Role)).Msg("User created")
	return nil
}

func (s *UserStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.Store().Get(id, &user); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) GetUserByName(ctx context.Context, userName string) (*models.User, error) {
	var users []models.User
	name := strings.ToLower(strings.TrimSpace(userName))
	if err := s.db.Store().Find(&users, badgerhold.Where("UserName").Eq(name).Index("UserName")); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(users) == 0 {
		return nil, interfaces.ErrUserNotFound
	}
	return &users[0], nil
}

func (s *UserStorage) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.User{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}
