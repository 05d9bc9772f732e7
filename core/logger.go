package core

// Logger is any leveled logger.
// args are optional context values: errors, maps of extra fields or the current Caller.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Caller identifies the authenticated user behind a log entry.
type Caller struct {
	ID   string
	Role string
}
