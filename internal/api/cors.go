package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// corsHeaders are sent on every response. The API is read-only, so only GET
// and preflight requests are allowed from other origins.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": strings.Join([]string{http.MethodGet, http.MethodOptions}, ", "),
	"Access-Control-Allow-Headers": "Authorization, Accept, Origin, Last-Event-ID",
	"Access-Control-Max-Age":       "86400",
}

// corsMiddleware adds the CORS headers to huma responses.
func corsMiddleware(ctx huma.Context, next func(huma.Context)) {
	for k, v := range corsHeaders {
		ctx.SetHeader(k, v)
	}
	if ctx.Method() == http.MethodOptions {
		ctx.SetStatus(http.StatusNoContent)
		return
	}
	next(ctx)
}

// handlePreflight answers OPTIONS for every path. huma routes by method, so
// preflight requests never reach its middleware chain.
func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusNoContent)
}
