// Package storage selects the persistence backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/storage/memory"
	"github.com/bobmcallan/navfolio/internal/storage/surrealdb"
)

// Backend names accepted in storage.backend.
const (
	BackendMemory    = "memory"
	BackendSurrealDB = "surrealdb"
)

// NewStorageManager creates the StorageManager named by config.Storage.Backend.
// An empty backend selects memory.
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	switch backend {
	case "", BackendMemory:
		logger.Info().Msg("Using in-memory storage")
		return memory.NewManager(), nil
	case BackendSurrealDB:
		return surrealdb.NewManager(logger, config)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, surrealdb)", config.Storage.Backend)
	}
}
