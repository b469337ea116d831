package storage

import (
	"errors"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/storage/badger"
)

var (
	// ErrStoragePathRequired is returned when storage.badger.path is empty
	ErrStoragePathRequired = errors.New("storage.badger.path is required")

	// ErrResetInProduction guards report history against reset_on_startup in production
	ErrResetInProduction = errors.New("storage.badger.reset_on_startup is not allowed in production")
)

// NewStorageManager opens the report and user stores described by config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	badgerConfig := &config.Storage.Badger

	if badgerConfig.Path == "" {
		return nil, ErrStoragePathRequired
	}
	if badgerConfig.ResetOnStartup && config.IsProduction() {
		return nil, ErrResetInProduction
	}

	return badger.NewManager(logger, badgerConfig)
}
