package api

import (
	"errors"
	"time"

	models "StockPulse/internal/domain/models"
	"StockPulse/internal/querycache"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler exposes the dashboard operations over HTTP. All
// fetch work is asynchronous: search and horizon endpoints return 202
// and clients follow progress through /api/entry or the status feed.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	dash   *usecase.Dashboard
}

func NewDashboardEchoHandler(logger *xlogger.Logger, dash *usecase.Dashboard) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, dash: dash}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/search", h.Search)
	g.POST("/horizon", h.Horizon)
	g.GET("/entry", h.Entry)
	g.GET("/chart", h.Chart)
	g.GET("/recent", h.Recent)
	g.GET("/health", h.Health)
}

func (h *DashboardEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.dash.SubmitSearch(c.Request().Context(), req.Ticker, req.Days); err != nil {
		if errors.Is(err, usecase.ErrEmptySymbol) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ticker must not be empty"))
		}
		h.logger.Error("search usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.AcceptedResponse(c, searchView{
		Ticker: querycache.NormalizeSymbol(req.Ticker),
		Days:   req.Days,
	})
}

func (h *DashboardEchoHandler) Horizon(c echo.Context) error {
	req := &models.HorizonRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.dash.ChangeHorizon(c.Request().Context(), req.Days); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSearch) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no active search, submit a search first"))
		}
		h.logger.Error("horizon usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.AcceptedResponse(c, horizonView{Days: req.Days})
}

func (h *DashboardEchoHandler) Entry(c echo.Context) error {
	req := &models.EntryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := querycache.NewKey(querycache.Kind(req.Kind), req.Ticker, req.Days)
	return xhttp.SuccessResponse(c, newEntryView(h.dash.Get(key)))
}

func (h *DashboardEchoHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.dash.AlignedForecast(req.Ticker, req.Thin))
}

func (h *DashboardEchoHandler) Recent(c echo.Context) error {
	return xhttp.SuccessResponse(c, recentView{Symbols: h.dash.Recent()})
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

type searchView struct {
	Ticker string `json:"ticker"`
	Days   int    `json:"days"`
}

type horizonView struct {
	Days int `json:"days"`
}

type recentView struct {
	Symbols []string `json:"symbols"`
}

// entryView is the wire shape of a cache snapshot. Errors are flattened
// to their message; FetchedAt is omitted for entries that never settled.
type entryView struct {
	Key       querycache.Key `json:"key"`
	Status    string         `json:"status"`
	Data      any            `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	FetchedAt string         `json:"fetched_at,omitempty"`
}

func newEntryView(entry querycache.Entry) entryView {
	view := entryView{
		Key:    entry.Key,
		Status: string(entry.Status),
		Data:   entry.Data,
	}
	if entry.Err != nil {
		view.Error = entry.Err.Error()
	}
	if !entry.FetchedAt.IsZero() {
		view.FetchedAt = entry.FetchedAt.Format(time.RFC3339Nano)
	}
	return view
}
