package handler

import (
	"net/http"
)

// Link is one entry in the root route directory.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// RootHandler serves a self-describing directory of the read-only routes
// registered at startup.
type RootHandler struct {
	service string
	links   []Link
}

// NewRootHandler creates a RootHandler for the given service name and
// pre-computed link directory.
func NewRootHandler(service string, links []Link) *RootHandler {
	return &RootHandler{service: service, links: links}
}

// Index returns the route directory.
// GET /
func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes everything unmatched to "/"; only the root itself
	// gets the directory.
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": h.service,
		"message": "See the links below for available endpoints.",
		"links":   h.links,
	})
}
