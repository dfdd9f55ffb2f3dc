package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmoren/circuitelo/internal/domain/ports"
	"github.com/dmoren/circuitelo/internal/domain/services"
)

// MergeHandler handles the batch identity merge pass. Runs between folds,
// never during one; ratings pick up merged identities on the next recompute.
type MergeHandler struct {
	store ports.RecordStore
	log   zerolog.Logger
}

// NewMergeHandler creates a new merge handler.
func NewMergeHandler(store ports.RecordStore, log zerolog.Logger) *MergeHandler {
	return &MergeHandler{
		store: store,
		log:   log,
	}
}

// MergeOutcome contains the result of a merge pass.
type MergeOutcome struct {
	RunID  string
	Result services.MergeResult
}

// Handle runs the merge pass over all stored external ids.
func (h *MergeHandler) Handle(ctx context.Context) (*MergeOutcome, error) {
	merger := services.NewMerger(h.store, h.log)
	result, err := merger.Run(ctx)
	if err != nil {
		return nil, err
	}

	outcome := &MergeOutcome{
		RunID:  uuid.New().String(),
		Result: *result,
	}

	if err := h.store.LogAction(ctx, outcome.RunID, "merge", map[string]any{
		"groups": result.Groups,
		"merged": result.Merged,
		"links":  result.Links,
	}); err != nil {
		return nil, fmt.Errorf("logging merge: %w", err)
	}

	return outcome, nil
}
