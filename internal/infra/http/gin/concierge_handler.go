package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"concierge/internal/app/commands"
	plansapp "concierge/internal/app/handlers/plans"
	"concierge/internal/app/queries"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

const idempotencyHeader = "Idempotency-Key"

type ConciergeHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type planRequest struct {
	BookingContext *trip.BookingContext `json:"booking_context"`
	Preferences    *trip.Preferences    `json:"preferences"`
	FreeTextQuery  string               `json:"free_text_query"`
}

type bookingPlanRequest struct {
	BookingID   trip.BookingID    `json:"booking_id"`
	Preferences *trip.Preferences `json:"preferences"`
}

type queryRequest struct {
	BookingID   trip.BookingID    `json:"booking_id"`
	Query       string            `json:"query"`
	Preferences *trip.Preferences `json:"preferences"`
}

type chatRequest struct {
	BookingID trip.BookingID `json:"booking_id"`
	Message   string         `json:"message"`
}

func (h ConciergeHandler) Plan(c *gin.Context) {
	var req planRequest
	if !bind(c, &req) {
		return
	}
	if req.BookingContext == nil {
		writeError(c, http.StatusBadRequest, "Booking context is required")
		return
	}
	h.generate(c, plansapp.GeneratePlanCommand{
		BookingID:   req.BookingContext.BookingID,
		Booking:     req.BookingContext,
		Preferences: preferencesOrDefault(req.Preferences),
		Message:     req.FreeTextQuery,
		Source:      domainplans.SourceRequest,
	})
}

func (h ConciergeHandler) PlanFromBooking(c *gin.Context) {
	var req bookingPlanRequest
	if !bind(c, &req) {
		return
	}
	h.generate(c, plansapp.GeneratePlanCommand{
		BookingID:   req.BookingID,
		Preferences: preferencesOrDefault(req.Preferences),
		Source:      domainplans.SourceBookingLookup,
	})
}

// Chat generates a plan for the booking; the message is stored with it as-is.
func (h ConciergeHandler) Chat(c *gin.Context) {
	var req chatRequest
	if !bind(c, &req) {
		return
	}
	h.generate(c, plansapp.GeneratePlanCommand{
		BookingID:   req.BookingID,
		Preferences: trip.DefaultPreferences(),
		Message:     strings.TrimSpace(req.Message),
		Source:      domainplans.SourceChat,
	})
}

func (h ConciergeHandler) generate(c *gin.Context, cmd plansapp.GeneratePlanCommand) {
	if h.Commands == nil {
		writeError(c, http.StatusServiceUnavailable, "commands unavailable")
		return
	}
	cmd.IdempotencyKeyV = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	result, err := commands.Dispatch[plansapp.GeneratePlanCommand, *plansapp.GeneratePlanResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		writeError(c, http.StatusInternalServerError, "empty plan result")
		return
	}
	if result.PlanID != "" {
		c.Header("X-Plan-ID", result.PlanID)
	}
	c.JSON(http.StatusOK, result.Response)
}

func (h ConciergeHandler) Query(c *gin.Context) {
	if h.Queries == nil {
		writeError(c, http.StatusServiceUnavailable, "queries unavailable")
		return
	}
	var req queryRequest
	if !bind(c, &req) {
		return
	}
	q := plansapp.AnswerQueryQuery{BookingID: req.BookingID, Query: req.Query, Preferences: req.Preferences}
	result, err := queries.Ask[plansapp.AnswerQueryQuery, plansapp.AnswerQueryResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ConciergeHandler) LatestPlan(c *gin.Context) {
	if h.Queries == nil {
		writeError(c, http.StatusServiceUnavailable, "queries unavailable")
		return
	}
	q := plansapp.GetLatestPlanQuery{BookingID: trip.BookingID(strings.TrimSpace(c.Param("booking_id")))}
	view, err := queries.Ask[plansapp.GetLatestPlanQuery, plansapp.PlanView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h ConciergeHandler) ExportPlan(c *gin.Context) {
	if h.Commands == nil {
		writeError(c, http.StatusServiceUnavailable, "commands unavailable")
		return
	}
	cmd := plansapp.ExportPlanCommand{BookingID: trip.BookingID(strings.TrimSpace(c.Param("booking_id")))}
	result, err := commands.Dispatch[plansapp.ExportPlanCommand, *plansapp.ExportPlanResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func preferencesOrDefault(p *trip.Preferences) trip.Preferences {
	if p == nil {
		return trip.DefaultPreferences()
	}
	return *p
}

var _ ConciergeHTTP = ConciergeHandler{}
