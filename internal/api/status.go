package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledcycle/internal/api/models"
	"github.com/smazurov/ledcycle/internal/events"
	"github.com/smazurov/ledcycle/internal/status"
)

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Engine Status",
		Description: "Current phase, active preset and last written channel levels",
		Tags:        []string{"engine"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		if s.options.Tracker == nil {
			return nil, huma.Error503ServiceUnavailable("status tracking is not running")
		}
		return &models.StatusResponse{Body: s.statusData(s.options.Tracker.Snapshot())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-presets",
		Method:      http.MethodGet,
		Path:        "/api/presets",
		Summary:     "List Presets",
		Description: "The preset table in cycle order",
		Tags:        []string{"engine"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.PresetListResponse, error) {
		table := s.options.Table
		if table == nil {
			return nil, huma.Error503ServiceUnavailable("no preset table loaded")
		}

		presets := make([]models.PresetInfo, 0, table.Len())
		for i, p := range table.All() {
			presets = append(presets, models.PresetInfo{
				Index:  i,
				Name:   p.Name,
				Levels: events.Levels(p.Levels),
			})
		}
		return &models.PresetListResponse{
			Body: models.PresetListData{
				Channels: table.Channels(),
				Presets:  presets,
				Count:    len(presets),
			},
		}, nil
	})
}

func (s *Server) statusData(snap status.Snapshot) models.StatusData {
	targets := snap.Targets
	if targets == nil {
		targets = []int{}
	}
	return models.StatusData{
		Phase:       snap.Phase,
		PresetIndex: snap.PresetIndex,
		PresetName:  snap.PresetName,
		Targets:     targets,
		Levels:      events.Levels(s.options.ChannelLevels()),
		LastPasses:  snap.LastPasses,
		PresetsHeld: snap.PresetsHeld,
		Cycles:      snap.Cycles,
		UpdatedAt:   snap.UpdatedAt,
	}
}
