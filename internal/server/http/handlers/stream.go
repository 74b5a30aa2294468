package handlers

import (
	"context"
	"fmt"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/server/ws"
)

// StreamRenderer renders live stream frames with the same documents the
// REST endpoints return.
type StreamRenderer struct {
	facade ViewFacade
}

// NewStreamRenderer creates StreamRenderer instance.
func NewStreamRenderer(facade ViewFacade) *StreamRenderer {
	return &StreamRenderer{facade: facade}
}

// View implements ws.Renderer.
func (r *StreamRenderer) View(ctx context.Context, actor model.Actor, restaurantID string, stream ws.Stream) (any, error) {
	switch stream {
	case ws.StreamBoard:
		board, err := r.facade.AdminBoard(ctx, actor, restaurantID)
		if err != nil {
			return nil, err
		}
		return toAdminBoardResponse(board), nil
	case ws.StreamDriver:
		board, err := r.facade.DriverBoard(ctx, actor, restaurantID)
		if err != nil {
			return nil, err
		}
		return toDriverBoardResponse(board), nil
	case ws.StreamHistory:
		history, err := r.facade.CustomerHistory(ctx, actor, restaurantID)
		if err != nil {
			return nil, err
		}
		return toCustomerHistoryResponse(history), nil
	}
	return nil, fmt.Errorf("unknown stream %q", stream)
}

var _ ws.Renderer = (*StreamRenderer)(nil)
