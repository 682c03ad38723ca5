package session

import (
	"time"

	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"gorm.io/gorm"
)

const storeCleanupInterval = 30 * time.Minute

func NewMemoryStore() scs.Store {
	return memstore.NewWithCleanupInterval(storeCleanupInterval)
}

// NewDatabaseStore persists sessions in the "sessions" table, creating it when missing.
func NewDatabaseStore(db *gorm.DB) (scs.Store, error) {
	return gormstore.NewWithCleanupInterval(db, storeCleanupInterval)
}
