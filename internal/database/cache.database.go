package database

import (
	"fmt"

	"servicelink/config"

	"github.com/valkey-io/valkey-go"
)

type CacheClient = valkey.Client

// Valkey database index organization. Each index gives logical separation
// between cache categories so a flush of one cannot clobber another.
const (
	// GENERAL_CACHE_INDEX (DB 0) - dashboard stats and other short-lived aggregates
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) - user profiles and the technician roster
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 2) - pub/sub channel for request update events
	EVENTS_CACHE_INDEX
)

type Cache struct {
	General CacheClient
	User    CacheClient
	Events  CacheClient
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("failed to initialize cache database: address or port is empty")
	}

	initAddress := []string{fmt.Sprintf("%s:%d", address, port)}

	var cacheDB Cache

	var err error
	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: initAddress,
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.User, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: initAddress,
			SelectDB:    USER_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create user valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: initAddress,
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	return nil
}
