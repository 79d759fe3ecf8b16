// Package notify provides ChangeNotifier implementations.
package notify

import "go.uber.org/zap"

// Log is a ChangeNotifier that records notifications in the structured log.
// Deployments with a push channel can swap in their own implementation.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a logging notifier.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// EventsChanged implements ports.ChangeNotifier.
func (n *Log) EventsChanged(gymID string) {
	n.logger.Info("events changed", zap.String("gym_id", gymID))
}

// Nop is a ChangeNotifier that does nothing.
type Nop struct{}

// EventsChanged implements ports.ChangeNotifier.
func (Nop) EventsChanged(string) {}
