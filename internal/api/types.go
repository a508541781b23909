package api

import (
	"github.com/Jairajmehra/projects-api/internal/listing"
	"github.com/Jairajmehra/projects-api/internal/query"
)

// Response envelopes. Field order and naming are part of the public contract
// the frontend depends on; has_more is always present, message/page/viewport
// only on the paths that produce them.

type statusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	CacheSize [2]int `json:"cache_size"`
}

type localitiesResponse struct {
	Status     string   `json:"status"`
	Localities []string `json:"localities"`
}

type projectListResponse struct {
	Status   string           `json:"status"`
	Projects []listing.Entity `json:"projects"`
	Total    int              `json:"total"`
	Page     int              `json:"page,omitempty"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
	Message  string           `json:"message,omitempty"`
	Viewport *query.Viewport  `json:"viewport,omitempty"`
}

type propertyListResponse struct {
	Status     string           `json:"status"`
	Properties []listing.Entity `json:"properties"`
	Total      int              `json:"total"`
	Page       int              `json:"page,omitempty"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
	HasMore    bool             `json:"has_more"`
	Message    string           `json:"message,omitempty"`
	Viewport   *query.Viewport  `json:"viewport,omitempty"`
}

// initializingProperties is the 202 payload of the property listing paths;
// it additionally carries an empty collection so naive clients can render it.
type initializingProperties struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Properties []listing.Entity `json:"properties"`
	Total      int              `json:"total"`
}

type statsResponse struct {
	Status        string `json:"status"`
	TotalRequests int64  `json:"total_requests"`
	TodayRequests int64  `json:"today_requests"`
}

type updateCacheResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	TotalProjects int    `json:"total_projects"`
}

const loadingMessage = "Data is being loaded. Please try again in a few minutes."
