package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/ledcycle/internal/events"
)

// registerSSERoutes registers the engine event stream.
func (s *Server) registerSSERoutes() {
	if s.options.EventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Engine Event Stream",
		Description: "Crossfade, hold and advance events as Server-Sent Events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"crossfade-started": events.CrossfadeStartedEvent{},
		"preset-held":       events.PresetHeldEvent{},
		"preset-advanced":   events.PresetAdvancedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.CrossfadeStartedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.PresetHeldEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.PresetAdvancedEvent](s.options.EventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
