// Package handlers wires domain services to the CLI surface.
package handlers

import (
	"context"
	"sort"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/services"
)

// SyncHandler runs sync passes over one or many units.
type SyncHandler struct {
	syncService *services.SyncService
	gymIDs      []string
	eventTypes  []entities.EventType
}

// NewSyncHandler creates a new sync handler. gymIDs and eventTypes define
// the full batch universe for HandleAll.
func NewSyncHandler(syncService *services.SyncService, gymIDs []string, eventTypes []entities.EventType) *SyncHandler {
	sorted := make([]string, len(gymIDs))
	copy(sorted, gymIDs)
	sort.Strings(sorted)
	return &SyncHandler{
		syncService: syncService,
		gymIDs:      sorted,
		eventTypes:  eventTypes,
	}
}

// HandleAll syncs every configured (gym, event type) unit sequentially.
func (h *SyncHandler) HandleAll(ctx context.Context) services.BatchResult {
	return h.syncService.SyncBatch(ctx, h.units(h.gymIDs, h.eventTypes))
}

// HandleGym syncs every event type for one gym.
func (h *SyncHandler) HandleGym(ctx context.Context, gymID string) services.BatchResult {
	return h.syncService.SyncBatch(ctx, h.units([]string{gymID}, h.eventTypes))
}

// HandleUnit syncs a single (gym, event type) pair.
func (h *SyncHandler) HandleUnit(ctx context.Context, gymID string, eventType entities.EventType) services.UnitResult {
	return h.syncService.SyncUnit(ctx, services.Unit{GymID: gymID, EventType: eventType})
}

func (h *SyncHandler) units(gymIDs []string, eventTypes []entities.EventType) []services.Unit {
	units := make([]services.Unit, 0, len(gymIDs)*len(eventTypes))
	for _, gymID := range gymIDs {
		for _, eventType := range eventTypes {
			units = append(units, services.Unit{GymID: gymID, EventType: eventType})
		}
	}
	return units
}
