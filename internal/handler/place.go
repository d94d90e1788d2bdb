package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/service"
)

const maxSuggestions = 10

// PlaceHandler suggests known place names for search boxes.
type PlaceHandler struct {
	names []string
}

// NewPlaceHandler creates a new PlaceHandler over the given place names.
func NewPlaceHandler(names []string) *PlaceHandler {
	return &PlaceHandler{names: names}
}

// PlaceSuggestion is one suggested place name.
type PlaceSuggestion struct {
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
}

// Suggest handles GET /v1/places?q=
func (h *PlaceHandler) Suggest(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "q is required")
		return
	}

	suggestions := make([]PlaceSuggestion, 0)
	for _, name := range h.names {
		score := service.Relevance(q, name)
		if service.Qualifies(score) {
			suggestions = append(suggestions, PlaceSuggestion{Name: name, Relevance: score})
		}
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Relevance != suggestions[j].Relevance {
			return suggestions[i].Relevance > suggestions[j].Relevance
		}
		return suggestions[i].Name < suggestions[j].Name
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	respondJSON(c, http.StatusOK, suggestions)
}
