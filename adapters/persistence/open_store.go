package persistence

import (
	"fmt"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/pkg/logger"
)

// OpenStore builds the key-value store selected by store.driver. The returned
// func releases the underlying connections.
func OpenStore(cfg config.Config, log logger.Logger) (service.KeyValueStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb, err := NewRedisClient(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	case config.StorePostgres:
		if err := RunMigrations(cfg.DB.DSN, log); err != nil {
			return nil, nil, err
		}
		pool, err := NewPostgresPool(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(pool), pool.Close, nil
	case config.StoreMemory, "":
		log.Warn("Using in-memory store, data is lost on restart")
		return NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
