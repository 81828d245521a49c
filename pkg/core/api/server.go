/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for FleetRadar.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/fleetradar/pkg/core"
	srHttp "github.com/carverauto/fleetradar/pkg/http"
	"github.com/carverauto/fleetradar/pkg/ingest"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
	"github.com/carverauto/fleetradar/pkg/query"
	"github.com/carverauto/fleetradar/pkg/version"
)

const (
	defaultMaxUploadBytes = 16 << 20
	defaultPageSize       = 50
	defaultMaxPageSize    = 500
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// APIServer exposes the device inventory over HTTP: source uploads,
// device queries, the fleet summary, and a live summary WebSocket.
type APIServer struct {
	coreService     CoreService
	router          *mux.Router
	corsConfig      models.CORSConfig
	logger          logger.Logger
	hub             *summaryHub
	apiKey          string
	maxUploadBytes  int64
	defaultPageSize int
	maxPageSize     int
}

// NewAPIServer creates a new API server instance with the given configuration.
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:          mux.NewRouter(),
		corsConfig:      config,
		maxUploadBytes:  defaultMaxUploadBytes,
		defaultPageSize: defaultPageSize,
		maxPageSize:     defaultMaxPageSize,
	}

	for _, o := range options {
		o(s)
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	s.hub = newSummaryHub(s.logger)

	if s.coreService != nil {
		s.coreService.AddSnapshotListener(func(snapshot *models.InventorySnapshot) {
			s.hub.broadcast(summaryMessage(snapshot.Summary, snapshot.Meta))
		})
	}

	s.setupRoutes()

	return s
}

// WithLogger sets the logger for the API server.
func WithLogger(log logger.Logger) func(*APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithCoreService attaches the inventory pipeline the handlers delegate to.
func WithCoreService(service CoreService) func(*APIServer) {
	return func(server *APIServer) {
		server.coreService = service
	}
}

// WithAPIKey protects the /api subtree with the given key. An empty
// key leaves the API open.
func WithAPIKey(apiKey string) func(*APIServer) {
	return func(server *APIServer) {
		server.apiKey = apiKey
	}
}

// WithUploadLimit caps the accepted request body size for source uploads.
func WithUploadLimit(maxBytes int64) func(*APIServer) {
	return func(server *APIServer) {
		if maxBytes > 0 {
			server.maxUploadBytes = maxBytes
		}
	}
}

// WithPageLimits sets the default and maximum page size for device listings.
func WithPageLimits(defaultSize, maxSize int) func(*APIServer) {
	return func(server *APIServer) {
		if defaultSize > 0 {
			server.defaultPageSize = defaultSize
		}

		if maxSize > 0 {
			server.maxPageSize = maxSize
		}
	}
}

// setupRoutes configures the HTTP routes for the API server.
func (s *APIServer) setupRoutes() {
	s.setupMiddleware()

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(srHttp.APIKeyMiddlewareWithOptions(srHttp.APIKeyOptions{
		APIKey:          s.apiKey,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	apiRouter.HandleFunc("/sources/{source}/rows", s.uploadSourceRows).Methods(http.MethodPost)
	apiRouter.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	apiRouter.HandleFunc("/devices/{hostname}", s.getDevice).Methods(http.MethodGet)
	apiRouter.HandleFunc("/summary", s.getSummary).Methods(http.MethodGet)
	apiRouter.HandleFunc("/summary/stream", s.handleSummaryStream).Methods(http.MethodGet)
	apiRouter.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
}

// setupMiddleware configures request-ID tagging, CORS, and request logging.
func (s *APIServer) setupMiddleware() {
	middlewareChain := func(next http.Handler) http.Handler {
		return srHttp.RequestIDMiddleware(srHttp.CommonMiddleware(next, s.corsConfig, s.logger))
	}

	s.router.Use(middlewareChain)
}

// ServeHTTP makes the server usable directly as an http.Handler.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// uploadSourceRows replaces one platform's rows and runs the pipeline.
// The body is either a JSON array of row objects or a text/csv document
// with a header row.
func (s *APIServer) uploadSourceRows(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	source, ok := models.ParseSource(vars["source"])
	if !ok {
		writeError(w, fmt.Sprintf("Unknown source %q", vars["source"]), http.StatusNotFound)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	rows, err := decodeRows(r.Header.Get("Content-Type"), body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		s.logger.Debug().
			Err(err).
			Str("source", string(source)).
			Msg("Rejected unreadable upload body")

		writeError(w, "Invalid request body", http.StatusBadRequest)

		return
	}

	result, err := s.coreService.SetSourceRows(r.Context(), source, rows)
	if err != nil {
		if errors.Is(err, core.ErrUnknownSource) {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}

		s.logger.Error().
			Err(err).
			Str("source", string(source)).
			Msg("Source upload failed")

		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode upload result")
	}
}

// decodeRows reads the upload body according to its content type.
// Anything that is not CSV is treated as a JSON array.
func decodeRows(contentType string, body io.Reader) ([]ingest.Row, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	if mediaType == "text/csv" {
		return ingest.ReadCSV(body)
	}

	var rows []ingest.Row
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode row array: %w", err)
	}

	return rows, nil
}

// getDevices lists the inventory, filtered by ?q= and paginated by
// ?page= and ?page_size=. Out-of-range pages are clamped here; the
// query layer stays strict.
func (s *APIServer) getDevices(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	devices := query.Filter(s.coreService.Devices(), params.Get("q"))

	pageSize := parsePositiveInt(params.Get("page_size"), s.defaultPageSize)
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	totalItems := len(devices)

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	page := parsePositiveInt(params.Get("page"), 1)
	if page > totalPages {
		page = totalPages
	}

	response := &DevicesResponse{
		Devices: query.Paginate(devices, pageSize, page),
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
	}

	if err := s.encodeJSONResponse(w, response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// getDevice returns a single device; the path value is normalized to
// the canonical hostname before lookup.
func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	device, exists := s.coreService.Device(vars["hostname"])
	if !exists {
		writeError(w, "Device not found", http.StatusNotFound)
		return
	}

	if err := s.encodeJSONResponse(w, device); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// getSummary returns the current fleet summary.
func (s *APIServer) getSummary(w http.ResponseWriter, _ *http.Request) {
	if err := s.encodeJSONResponse(w, s.coreService.Summary()); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// getStatus reports service health: uptime, version, and the metadata
// of the snapshot currently being served.
func (s *APIServer) getStatus(w http.ResponseWriter, _ *http.Request) {
	uptime := s.coreService.Uptime()

	status := &StatusResponse{
		Status:        "ok",
		Version:       version.GetVersion(),
		BuildID:       version.GetBuildID(),
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		TotalDevices:  s.coreService.Summary().TotalDevices,
		Snapshot:      s.coreService.Meta(),
	}

	if err := s.encodeJSONResponse(w, status); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}

	return value
}

// Start starts the API server on the specified address.
func (s *APIServer) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,  // Timeout for reading the entire request, including the body.
		WriteTimeout: defaultWriteTimeout, // Timeout for writing the response.
		IdleTimeout:  defaultIdleTimeout,  // Timeout for idle connections waiting in the Keep-Alive state.
	}

	return srv.ListenAndServe()
}

// encodeJSONResponse encodes a response as JSON
func (*APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return err
	}

	return nil
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		// Fallback in case encoding fails
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
