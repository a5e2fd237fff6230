package events

import (
	platformevents "bighome_hub/platform/events"
	"bighome_hub/platform/logger"
)

// InMemoryBus lets composition roots build the bus without importing platform/events.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
