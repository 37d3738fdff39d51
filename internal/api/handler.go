package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

type Handler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(l *ledger.Ledger, logger *zap.Logger) *Handler {
	return &Handler{ledger: l, logger: logger, now: time.Now}
}

// NewRouter builds the gin engine with request logging and every route registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.health)

	router.GET("/trips", h.listTrips)
	router.GET("/trips/:id", h.getTrip)
	router.POST("/trips/:id/assignment", h.assign)
	router.POST("/trips/:id/exceptions", h.reportException)

	router.GET("/drivers", h.listDrivers)
	router.GET("/assets", h.listAssets)
	router.GET("/trailers", h.listTrailers)
	router.GET("/candidates", h.candidates)
	router.GET("/kpis", h.kpis)
	router.GET("/map", h.fleetMap)

	router.POST("/reset", h.reset)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listTrips(c *gin.Context) {
	trips := h.ledger.Trips()
	switch view := c.DefaultQuery("view", "all"); view {
	case "all":
	case "active":
		trips = ledger.ActiveTrips(trips)
	case "at-risk":
		trips = ledger.AtRiskTrips(trips)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "view must be one of all, active, at-risk",
		})
		return
	}

	out := make([]TripSummary, 0, len(trips))
	for _, t := range trips {
		out = append(out, h.summarize(t))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *Handler) getTrip(c *gin.Context) {
	trip, err := h.ledger.Trip(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.detail(trip))
}

func (h *Handler) assign(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	tripID := c.Param("id")
	if err := h.ledger.AssignResources(c.Request.Context(), tripID, req.DriverID, req.AssetID, req.TrailerID); err != nil {
		h.writeError(c, err)
		return
	}

	trip, err := h.ledger.Trip(tripID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.detail(trip))
}

func (h *Handler) reportException(c *gin.Context) {
	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	exc, err := h.ledger.ReportException(c.Request.Context(), c.Param("id"),
		models.ExceptionType(req.Type), models.Severity(req.Severity), req.Description)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exc)
}

func (h *Handler) listDrivers(c *gin.Context) {
	drivers := h.ledger.Drivers()
	out := make([]DriverView, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, DriverView{Driver: d, HOSLabel: models.FormatHOS(d.HOSRemaining)})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *Handler) listAssets(c *gin.Context) {
	assets := h.ledger.Assets()
	c.JSON(http.StatusOK, gin.H{"data": assets, "total": len(assets)})
}

func (h *Handler) listTrailers(c *gin.Context) {
	trailers := h.ledger.Trailers()
	c.JSON(http.StatusOK, gin.H{"data": trailers, "total": len(trailers)})
}

func (h *Handler) candidates(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Candidates())
}

func (h *Handler) kpis(c *gin.Context) {
	k := h.ledger.KPIs()
	c.JSON(http.StatusOK, KPIView{KPIMetrics: k, OnTarget: k.OnTarget()})
}

func (h *Handler) fleetMap(c *gin.Context) {
	active := ledger.ActiveTrips(h.ledger.Trips())
	bounds := ledger.ComputeBounds(active)

	view := MapView{Bounds: bounds, Pins: make([]MapPin, 0, len(active))}
	if !bounds.Empty {
		view.Center = bounds.Center()
		for _, t := range active {
			x, y := bounds.Project(t.CurrentLocation)
			view.Pins = append(view.Pins, MapPin{
				TripID:   t.ID,
				OrderRef: t.OrderRef,
				Status:   t.Status,
				Risk:     t.OnTimeRisk,
				Location: t.CurrentLocation,
				X:        x,
				Y:        y,
			})
		}
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) reset(c *gin.Context) {
	if err := h.ledger.Reset(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// writeError maps ledger errors onto status codes. Anything that is not a
// domain error is logged and reported as 500 without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		ve *ledger.ValidationError
		nf *ledger.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation", "message": ve.Message})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": nf.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"})
	}
}
