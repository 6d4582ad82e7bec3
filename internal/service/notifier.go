package service

// Notifier shows a one-off message to the user, the way a browser alert
// would.
type Notifier interface {
	Notify(message string)
}
