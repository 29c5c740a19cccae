// Package mqtt defines how generated grids are broadcast to field displays.
package mqtt

import (
	"context"

	"github.com/kilianp07/minesched/core/schedule"
)

// GridPublisher broadcasts a generated grid.
type GridPublisher interface {
	PublishGrid(ctx context.Context, generationID string, g *schedule.Grid) error
}

// NopPublisher discards grids. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishGrid(context.Context, string, *schedule.Grid) error { return nil }
