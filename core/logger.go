package core

// Logger is the app-wide logging contract.
// Implementations may fan extra args out to an error tracker; a user.User arg
// identifies the acting user on such trackers.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
