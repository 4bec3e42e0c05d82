package constants

type contextKey string

const (
	PoolKey      contextKey = "pool"
	TxKey        contextKey = "tx"
	LoggerKey    contextKey = "logger"
	UserIDKey    contextKey = "user_id"
	RequestIDKey contextKey = "request_id"
)
