// Package relay implements the public HTTP surface of the printer monitor:
// the bridge push endpoint, the dashboard query endpoints, health, a
// websocket live feed, and the static bundle catch-all.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bozocamp/bc-printer-monitor-render/internal/fallback"
	"github.com/bozocamp/bc-printer-monitor-render/internal/logger"
	"github.com/bozocamp/bc-printer-monitor-render/internal/report"
	"github.com/bozocamp/bc-printer-monitor-render/internal/roster"
	"github.com/bozocamp/bc-printer-monitor-render/internal/snapshot"
)

// Data source labels reported to clients.
const (
	SourceBridge = "bridge-server"
	SourceDemo   = "demo"
	SourceReady  = "ready-for-data"
)

// API serves the relay endpoints over a shared snapshot store.
type API struct {
	store  *snapshot.Store
	roster []roster.Entry
	gen    fallback.Generator
	hub    *Hub
	log    *logger.Logger
	now    func() time.Time
}

// APIOptions configures the relay API.
type APIOptions struct {
	Store     *snapshot.Store
	Roster    []roster.Entry
	Generator fallback.Generator // policy for empty-store reads
	Hub       *Hub               // optional live-feed hub
	Logger    *logger.Logger
	Now       func() time.Time // test seam, defaults to time.Now
}

// NewAPI creates the relay API. Generator defaults to the deterministic
// readiness policy, Logger to a WARN-level logger.
func NewAPI(opts APIOptions) *API {
	api := &API{
		store:  opts.Store,
		roster: opts.Roster,
		gen:    opts.Generator,
		hub:    opts.Hub,
		log:    opts.Logger,
		now:    opts.Now,
	}
	if api.store == nil {
		api.store = snapshot.New()
	}
	if api.gen == nil {
		api.gen = fallback.Readiness{}
	}
	if api.log == nil {
		api.log = logger.New(logger.WARN, 100)
	}
	if api.now == nil {
		api.now = time.Now
	}
	return api
}

// RegisterRoutes attaches all API routes to the router. The static
// catch-all must be registered last so API paths win.
func (api *API) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/health", api.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/bridge-data", api.HandleBridgeData).Methods(http.MethodPost)
	r.HandleFunc("/api/printers", api.HandlePrinters).Methods(http.MethodGet)
	r.HandleFunc("/api/printers/status", api.HandlePrintersStatus).Methods(http.MethodPost)
	r.HandleFunc("/api/live", api.HandleLive).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(StaticHandler()).Methods(http.MethodGet)
}

// CORSMiddleware allows any origin, matching the relay's public-dashboard
// deployment where the bundle may be served from elsewhere.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleHealth handles GET /api/health. It never fails: absence of bridge
// data is reported as the ready state, not an error.
func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := api.store.Get()
	source := SourceReady
	if !api.store.IsEmpty() {
		source = SourceBridge
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "OK",
		"message":      "printer monitor relay is running",
		"dataSource":   source,
		"lastUpdate":   formatCapturedAt(snap.CapturedAt),
		"printerCount": len(api.roster),
		"timestamp":    api.now().UTC().Format(time.RFC3339),
	})
}

// ErrInvalidPayload marks bridge pushes rejected during decode.
var ErrInvalidPayload = errors.New("invalid data format")

// bridgePayload distinguishes a missing printers field (nil pointer) from a
// present-but-empty array, which is a valid whole-snapshot replacement.
type bridgePayload struct {
	Printers *[]report.Device `json:"printers"`
}

func decodeBridgePayload(r *http.Request) ([]report.Device, error) {
	var payload bridgePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Printers == nil {
		return nil, fmt.Errorf("%w: printers array missing", ErrInvalidPayload)
	}
	return *payload.Printers, nil
}

// HandleBridgeData handles POST /api/bridge-data: the trusted bridge pushes
// a full snapshot which replaces the stored one. A failed push leaves the
// previous snapshot untouched.
func (api *API) HandleBridgeData(w http.ResponseWriter, r *http.Request) {
	// Processing bugs must not leak internals to callers; detail goes to
	// the server log only.
	defer func() {
		if rec := recover(); rec != nil {
			api.log.Error("Panic while processing bridge data", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "internal error",
			})
		}
	}()

	printers, err := decodeBridgePayload(r)
	if err != nil {
		api.log.Warn("Rejected bridge payload", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid data format",
		})
		return
	}

	api.store.Set(printers)

	online := report.CountOnline(printers)
	withSNMP := report.CountMethod(printers, report.MethodSNMP)
	api.log.Info("Stored bridge snapshot", "count", len(printers), "online", online, "snmp", withSNMP)

	api.broadcastSnapshot()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Received real data for %d printers", len(printers)),
		"online":    online,
		"withSNMP":  withSNMP,
		"timestamp": api.store.Get().CapturedAt.UTC().Format(time.RFC3339),
	})
}

// HandlePrinters handles GET /api/printers.
func (api *API) HandlePrinters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.queryResponse())
}

// HandlePrintersStatus handles POST /api/printers/status. Clients post
// their roster but the response is always derived from server-side state;
// the body is read and discarded.
func (api *API) HandlePrintersStatus(w http.ResponseWriter, r *http.Request) {
	var discard struct {
		Printers []roster.Entry `json:"printers"`
	}
	// Body is advisory only; decode errors are ignored on purpose.
	_ = json.NewDecoder(r.Body).Decode(&discard)

	writeJSON(w, http.StatusOK, api.queryResponse())
}

// queryResponse resolves the read: stored snapshot when present, generated
// fallback otherwise. Empty state is not an error.
func (api *API) queryResponse() map[string]interface{} {
	snap := api.store.Get()

	data := snap.Reports
	source := SourceBridge
	if api.store.IsEmpty() {
		data = api.gen.Generate(api.roster)
		source = SourceDemo
	}
	if data == nil {
		data = []report.Device{}
	}

	return map[string]interface{}{
		"success":    true,
		"data":       data,
		"count":      len(data),
		"online":     report.CountOnline(data),
		"dataSource": source,
		"lastUpdate": formatCapturedAt(snap.CapturedAt),
		"timestamp":  api.now().UTC().Format(time.RFC3339),
	}
}

// broadcastSnapshot pushes the current query payload to live-feed clients.
func (api *API) broadcastSnapshot() {
	if api.hub == nil {
		return
	}
	msg, err := json.Marshal(api.queryResponse())
	if err != nil {
		api.log.Warn("Failed to encode live-feed payload", "error", err)
		return
	}
	api.hub.Broadcast(msg)
}

func formatCapturedAt(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
