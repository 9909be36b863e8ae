package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

func (s *Server) registerAggregateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAggregate",
		Method:      http.MethodGet,
		Path:        "/api/v1/aggregates/{slot}",
		Summary:     "Get aggregate slot",
		Description: "Returns the cached union of values for one slot (developers, publishers, genres, flags, languages, vr), computing it on first access",
		Tags:        []string{"Aggregates"},
	}, s.handleGetAggregate)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshAggregate",
		Method:      http.MethodPost,
		Path:        "/api/v1/aggregates/{slot}/refresh",
		Summary:     "Refresh aggregate slot",
		Description: "Discards the cached slot and recomputes it from the current catalog",
		Tags:        []string{"Aggregates"},
	}, s.handleRefreshAggregate)
}

// === DTOs ===

// AggregateInput identifies one aggregate slot.
type AggregateInput struct {
	Slot string `path:"slot" doc:"Slot name: developers, publishers, genres, flags, languages, or vr"`
}

// AggregateResponse contains one aggregate slot in API responses.
type AggregateResponse struct {
	Slot   string              `json:"slot" doc:"Slot name"`
	Values []string            `json:"values,omitempty" doc:"Sorted union of values (scalar slots)"`
	Sets   map[string][]string `json:"sets,omitempty" doc:"Named unions (languages and vr slots)"`
}

// AggregateOutput wraps an aggregate response for Huma.
type AggregateOutput struct {
	Body AggregateResponse
}

// === Handlers ===

func (s *Server) handleGetAggregate(ctx context.Context, input *AggregateInput) (*AggregateOutput, error) {
	res, err := s.services.Aggregate.Get(ctx, input.Slot)
	if err != nil {
		return nil, err
	}

	return &AggregateOutput{Body: toAggregateResponse(res)}, nil
}

func (s *Server) handleRefreshAggregate(ctx context.Context, input *AggregateInput) (*AggregateOutput, error) {
	res, err := s.services.Aggregate.Refresh(ctx, input.Slot)
	if err != nil {
		return nil, err
	}

	return &AggregateOutput{Body: toAggregateResponse(res)}, nil
}

func toAggregateResponse(res *store.AggregateResult) AggregateResponse {
	return AggregateResponse{
		Slot:   string(res.Slot),
		Values: res.Values,
		Sets:   res.Sets,
	}
}
