package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Ping timeouts for health checks
const (
	DBPingTimeout    = 5 * time.Second
	RedisPingTimeout = 2 * time.Second
)

// How long resolved queue entries and terminal matches stay visible to
// status polls before the cleanup job drops them.
const ResolutionRetention = 10 * time.Minute

// Cap on pairs proposed in a single matchmaking pass
const MaxPairsPerCycle = 256

// Default limit for match history queries
const DefaultHistoryLimit = 50
