// Package api registers the HTTP routes on a dedicated ServeMux, keeping the
// main entry point free of handler logic.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Jairajmehra/projects-api/internal/cache"
	"github.com/Jairajmehra/projects-api/internal/listing"
	"github.com/Jairajmehra/projects-api/internal/logger"
	"github.com/Jairajmehra/projects-api/internal/metrics"
	"github.com/Jairajmehra/projects-api/internal/query"
	"github.com/Jairajmehra/projects-api/internal/stats"
)

// Server wires the handlers to their collaborators: the cache store, an
// optional redis client for by-id response caching, and the optional request
// stats store.
type Server struct {
	store      *cache.Store
	rc         *redis.Client
	stats      *stats.Store
	adminToken string
}

// BuildRoutes constructs the API mux. rc and st may be nil.
func BuildRoutes(store *cache.Store, rc *redis.Client, st *stats.Store, adminToken string) *http.ServeMux {
	s := &Server{store: store, rc: rc, stats: st, adminToken: adminToken}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.instrument("status", s.handleStatus))
	mux.HandleFunc("/get_localities", s.instrument("get_localities", s.handleLocalities))
	mux.HandleFunc("/residential_projects", s.instrument("residential_projects", s.projectsHandler(func(snap *cache.Snapshot) []listing.Entity {
		return snap.ResidentialProjects
	})))
	mux.HandleFunc("/commercial_projects", s.instrument("commercial_projects", s.projectsHandler(func(snap *cache.Snapshot) []listing.Entity {
		return snap.CommercialProjects
	})))
	mux.HandleFunc("/search_residential_projects", s.instrument("search_residential_projects", s.searchHandler(func(snap *cache.Snapshot) (map[string][]int, []listing.Entity) {
		return snap.ResidentialNameIndex, snap.ResidentialProjects
	})))
	mux.HandleFunc("/search_commercial_projects", s.instrument("search_commercial_projects", s.searchHandler(func(snap *cache.Snapshot) (map[string][]int, []listing.Entity) {
		return snap.CommercialNameIndex, snap.CommercialProjects
	})))
	mux.HandleFunc("/residential_properties", s.instrument("residential_properties", s.handleResidentialProperties))
	mux.HandleFunc("/commercial_properties", s.instrument("commercial_properties", s.handleCommercialProperties))
	mux.HandleFunc("/residential_property_by_id", s.instrument("residential_property_by_id", s.propertyByIDHandler("resprop", func(snap *cache.Snapshot) []listing.Entity {
		return snap.ResidentialProperties
	})))
	mux.HandleFunc("/commercial_property_by_id", s.instrument("commercial_property_by_id", s.propertyByIDHandler("comprop", func(snap *cache.Snapshot) []listing.Entity {
		return snap.CommercialProperties
	})))
	mux.HandleFunc("/update_cache", s.instrument("update_cache", s.handleUpdateCache))
	mux.HandleFunc("/stats", s.instrument("stats", s.handleStats))
	return mux
}

// instrument counts and times the request, and bumps the persistent stats
// counter when configured.
func (s *Server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
		s.stats.IncrRequest(r.Context(), endpoint)
		h(w, r)
		metrics.RequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(t0).Milliseconds()))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, statusMessage{Status: "error", Message: message})
}

// writeNotReady answers a request that arrived before population finished.
// 202 is retry-later, not a failure.
func writeNotReady(w http.ResponseWriter) {
	metrics.NotReadyTotal.Inc()
	writeJSON(w, http.StatusAccepted, statusMessage{Status: "initializing", Message: loadingMessage})
}

func writeNotReadyProperties(w http.ResponseWriter) {
	metrics.NotReadyTotal.Inc()
	writeJSON(w, http.StatusAccepted, initializingProperties{
		Status:     "initializing",
		Message:    loadingMessage,
		Properties: []listing.Entity{},
		Total:      0,
	})
}

// intParam parses an integer query parameter, falling back to def when the
// parameter is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}

// listParam reads a possibly comma-separated query parameter into a list.
func listParam(r *http.Request, name string) []string {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// floatParam parses an optional float query parameter, nil when absent.
func floatParam(r *http.Request, name string) (*float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter", name)
	}
	return &f, nil
}

// viewportRequested reports whether all four bound parameters are present;
// viewport mode only activates with the complete quad.
func viewportRequested(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("minLat") != "" && q.Get("maxLat") != "" && q.Get("minLng") != "" && q.Get("maxLng") != ""
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.store.EnsureInitialized() {
		writeNotReady(w)
		return
	}
	res, com := s.store.CacheSize()
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", CacheSize: [2]int{res, com}})
}

func (s *Server) handleLocalities(w http.ResponseWriter, r *http.Request) {
	if !s.store.EnsureInitialized() {
		writeNotReady(w)
		return
	}
	// cases.Caser carries transform state, so each request gets its own.
	caser := cases.Title(language.English)
	snap := s.store.Snapshot()
	names := make([]string, 0, len(snap.Localities))
	for _, loc := range snap.Localities {
		if loc == nil {
			continue
		}
		name := strings.TrimSpace(loc.Name())
		if name == "" {
			continue
		}
		names = append(names, caser.String(strings.ToLower(name)))
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, localitiesResponse{Status: "success", Localities: names})
}

// projectsHandler serves a project collection with flat pagination, or
// viewport filtering when the full bound quad is supplied.
func (s *Server) projectsHandler(pick func(*cache.Snapshot) []listing.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.store.EnsureInitialized() {
			writeNotReady(w)
			return
		}
		limit, err := intParam(r, "limit", 12)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := intParam(r, "offset", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		projects := pick(s.store.Snapshot())

		if viewportRequested(r) {
			s.writeProjectsViewport(w, r, projects, limit, offset)
			return
		}
		page := query.Paginate(projects, limit, offset)
		resp := projectListResponse{
			Status:   "success",
			Projects: page.Items,
			Total:    page.Total,
			Limit:    page.Limit,
			Offset:   page.Offset,
			HasMore:  page.HasMore,
		}
		if page.Overflow {
			resp.Message = "Offset exceeds available data"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) writeProjectsViewport(w http.ResponseWriter, r *http.Request, projects []listing.Entity, limit, offset int) {
	q := r.URL.Query()
	vp, err := query.NewViewport(q.Get("minLat"), q.Get("maxLat"), q.Get("minLng"), q.Get("maxLng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := query.InViewport(projects, vp, query.PageParams{Page: 1, Limit: limit, Offset: offset})
	writeJSON(w, http.StatusOK, projectListResponse{
		Status:   "success",
		Projects: result.Items,
		Total:    result.Total,
		Page:     result.Page,
		Limit:    result.Limit,
		Offset:   result.Offset,
		HasMore:  result.HasMore,
		Message:  result.Message,
		Viewport: &result.Viewport,
	})
}

func (s *Server) writePropertiesViewport(w http.ResponseWriter, r *http.Request, properties []listing.Entity, limit, offset int) {
	q := r.URL.Query()
	vp, err := query.NewViewport(q.Get("minLat"), q.Get("maxLat"), q.Get("minLng"), q.Get("maxLng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := query.InViewport(properties, vp, query.PageParams{Page: 1, Limit: limit, Offset: offset})
	writeJSON(w, http.StatusOK, propertyListResponse{
		Status:     "success",
		Properties: result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		Offset:     result.Offset,
		HasMore:    result.HasMore,
		Message:    result.Message,
		Viewport:   &result.Viewport,
	})
}

// writeProperties paginates an already-filtered property collection.
func writeProperties(w http.ResponseWriter, filtered []listing.Entity, limit, offset int) {
	page := query.Paginate(filtered, limit, offset)
	resp := propertyListResponse{
		Status:     "success",
		Properties: page.Items,
		Total:      page.Total,
		Limit:      page.Limit,
		Offset:     page.Offset,
		HasMore:    page.HasMore,
	}
	if page.Overflow {
		resp.Message = "Offset exceeds available data"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResidentialProperties(w http.ResponseWriter, r *http.Request) {
	if !s.store.EnsureInitialized() {
		writeNotReadyProperties(w)
		return
	}
	priceMin, err := floatParam(r, "priceMin")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	priceMax, err := floatParam(r, "priceMax")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := query.ResidentialFilter{
		PriceMin:        priceMin,
		PriceMax:        priceMax,
		BHK:             listParam(r, "bhk"),
		TransactionType: r.URL.Query().Get("transactionType"),
		PropertyTypes:   listParam(r, "propertyType"),
		Localities:      listParam(r, "locality"),
	}
	filtered := filter.Apply(s.store.Snapshot().ResidentialProperties)
	if viewportRequested(r) {
		s.writePropertiesViewport(w, r, filtered, limit, offset)
		return
	}
	writeProperties(w, filtered, limit, offset)
}

func (s *Server) handleCommercialProperties(w http.ResponseWriter, r *http.Request) {
	if !s.store.EnsureInitialized() {
		writeNotReadyProperties(w)
		return
	}
	priceMin, err := floatParam(r, "priceMin")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	priceMax, err := floatParam(r, "priceMax")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := query.CommercialFilter{
		PriceMin:        priceMin,
		PriceMax:        priceMax,
		TransactionType: r.URL.Query().Get("transactionType"),
		PropertyTypes:   listParam(r, "propertyType"),
		Localities:      listParam(r, "locality"),
	}
	filtered := filter.Apply(s.store.Snapshot().CommercialProperties)
	if viewportRequested(r) {
		s.writePropertiesViewport(w, r, filtered, limit, offset)
		return
	}
	writeProperties(w, filtered, limit, offset)
}

// searchHandler serves prefix search over one of the two name indices.
func (s *Server) searchHandler(pick func(*cache.Snapshot) (map[string][]int, []listing.Entity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.store.EnsureInitialized() {
			writeNotReady(w)
			return
		}
		term := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		if term == "" {
			writeError(w, http.StatusBadRequest, "Search term is required")
			return
		}
		limit, err := intParam(r, "limit", 12)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parameters for limit or offset")
			return
		}
		offset, err := intParam(r, "offset", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parameters for limit or offset")
			return
		}
		limit = min(100, max(1, limit))

		index, collection := pick(s.store.Snapshot())
		matches := query.SearchByNamePrefix(index, collection, term)
		page := query.Paginate(matches, limit, offset)
		resp := projectListResponse{
			Status:   "success",
			Projects: page.Items,
			Total:    page.Total,
			Limit:    page.Limit,
			Offset:   page.Offset,
			HasMore:  page.HasMore,
		}
		if page.Overflow {
			resp.Message = "Offset exceeds available data"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// propertyByIDHandler answers point lookups, read-through cached in redis
// under a kind-scoped key when redis is configured.
func (s *Server) propertyByIDHandler(kind string, pick func(*cache.Snapshot) []listing.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.store.EnsureInitialized() {
			writeNotReady(w)
			return
		}
		ctx := r.Context()
		id := r.URL.Query().Get("propertyId")
		key := kind + ":" + id
		if id != "" && s.rc != nil {
			if cached, err := s.rc.Get(ctx, key).Result(); err == nil && cached != "" {
				var e listing.Entity
				if json.Unmarshal([]byte(cached), &e) == nil {
					metrics.RedisHitsTotal.Inc()
					writeJSON(w, http.StatusOK, e)
					return
				}
			}
			metrics.RedisMissesTotal.Inc()
		}
		e, ok := query.ByID(pick(s.store.Snapshot()), id)
		if !ok {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		if s.rc != nil {
			if b, err := json.Marshal(e); err == nil {
				s.rc.Set(ctx, key, string(b), 24*time.Hour)
			}
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// handleStats reports the persistent request counters. Without a configured
// stats store every counter reads as zero.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.stats.GetTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Status:        "success",
		TotalRequests: totals.Total,
		TodayRequests: totals.Today,
	})
}

// handleUpdateCache forces a synchronous refresh, guarded by the admin token
// when one is configured. Refresh failure keeps the previous cache contents
// and surfaces the error.
func (s *Server) handleUpdateCache(w http.ResponseWriter, r *http.Request) {
	if s.adminToken != "" && r.Header.Get("x-admin-token") != s.adminToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := s.store.Refresh(r.Context()); err != nil {
		logger.L().Error("cache_refresh_error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, updateCacheResponse{
		Status:        "success",
		Message:       "Cache updated successfully",
		TotalProjects: len(snap.ResidentialProjects),
	})
}
