package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledcycle/internal/api/models"
	"github.com/smazurov/ledcycle/internal/logging"
)

// registerLogRoutes registers the buffered log endpoint.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Log entries held in the in-memory ring buffer, oldest first",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.LogsInput) (*models.LogsResponse, error) {
		level := strings.ToLower(input.Level)
		if level != "" && !logging.ValidLevel(level) {
			return nil, huma.Error400BadRequest("unknown level " + input.Level)
		}

		var buffered []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			buffered = buffer.Tail(input.Limit, level)
		}

		entries := make([]models.LogEntry, 0, len(buffered))
		for _, entry := range buffered {
			entries = append(entries, models.LogEntry{
				Timestamp:  entry.Timestamp,
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
				Line:       logging.FormatLogLine(entry),
			})
		}

		return &models.LogsResponse{
			Body: models.LogsData{
				Entries: entries,
				Count:   len(entries),
			},
		}, nil
	})
}
