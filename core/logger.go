package core

// Logger is any service that can log application events.
// Args may contain errors, map[string]interface{} extras and at most one user.User,
// which identifies the person the event relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
