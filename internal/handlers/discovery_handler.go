package handlers

import (
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// DiscoveryHandler serves historical events, search and recommendations.
type DiscoveryHandler struct {
	events          *services.EventService
	search          *services.SearchService
	recommendations *services.RecommendationService
}

func NewDiscoveryHandler(events *services.EventService, search *services.SearchService, recommendations *services.RecommendationService) *DiscoveryHandler {
	return &DiscoveryHandler{events: events, search: search, recommendations: recommendations}
}

func (h *DiscoveryHandler) HistoricalEvents(c *fiber.Ctx) error {
	events, err := h.events.ListHistoricalEvents(c.UserContext(), c.Query("era"), c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.EventListResponse{Events: events})
}

func (h *DiscoveryHandler) Search(c *fiber.Ctx) error {
	resp, err := h.search.Search(c.UserContext(), services.SearchQuery{
		Query: c.Query("q"),
		Type:  c.Query("type", services.SearchAll),
		Page:  pageRequest(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *DiscoveryHandler) Recommendations(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return respondError(c, services.ErrAuthRequired)
	}

	resp, err := h.recommendations.Recommend(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
