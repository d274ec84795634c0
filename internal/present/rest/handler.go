package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/trace"

	"github.com/openprofile/openprofile"
	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/internal/present/rest/presenter"
	"github.com/openprofile/openprofile/internal/usecase"
	"github.com/openprofile/openprofile/visibility"
)

// RealtimeSource relays profile events for subscribed channels until
// ctx is cancelled. Implementations must never close output.
type RealtimeSource interface {
	Realtime(ctx context.Context, input <-chan []string, output chan<- openprofile.ProfileEvent)
}

type Handler struct {
	config  domain.Config
	profile *usecase.ProfileUsecase
	trust   *usecase.TrustUsecase
	signal  RealtimeSource
}

func NewHandler(
	config domain.Config,
	profile *usecase.ProfileUsecase,
	trust *usecase.TrustUsecase,
	signal RealtimeSource,
) *Handler {
	return &Handler{
		config:  config,
		profile: profile,
		trust:   trust,
		signal:  signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/openprofile", h.handleWellKnown)
	e.GET("/profile/:userID", h.handleProfile)
	e.PUT("/profile/:userID/properties/:property", h.handleUpdateProperty)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	wellknown := openprofile.WellKnownProfile{
		Version: "1.0",
		Domain:  h.config.FQDN,
		Endpoints: map[string]string{
			"org.openprofile.profile":  "/profile/{userId}",
			"org.openprofile.property": "/profile/{userId}/properties/{property}",
			"org.openprofile.realtime": "/realtime",
		},
	}
	return presenter.OK(c, wellknown)
}

// viewerFromContext falls back to the zero viewer, which is the
// anonymous cross-instance requester.
func viewerFromContext(c echo.Context) visibility.ViewerContext {
	viewer, ok := c.Request().Context().Value(domain.ViewerContextCtxKey).(visibility.ViewerContext)
	if !ok {
		return visibility.ViewerContext{}
	}
	return viewer
}

func requesterFromContext(c echo.Context) string {
	requester, ok := c.Request().Context().Value(domain.RequesterIdCtxKey).(string)
	if !ok {
		return ""
	}
	return requester
}

func (h *Handler) handleProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Param("userID")
	if userID == "" {
		return presenter.BadRequestMessage(c, "userID is required")
	}

	viewer := viewerFromContext(c)

	doc, err := h.profile.GetProfile(ctx, userID, viewer)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProfileDisabled) {
			// A disabled profile is indistinguishable from a missing
			// one on purpose.
			return presenter.NotFound(c, "profile not found")
		}
		trace.SpanFromContext(ctx).RecordError(err)
		return presenter.InternalError(c, err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(payload))
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set("ETag", etag)

	return c.JSONBlob(http.StatusOK, payload)
}

type updatePropertyRequest struct {
	Value string `json:"value"`
	Scope string `json:"scope"`
}

func (h *Handler) handleUpdateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Param("userID")
	property := c.Param("property")

	var req updatePropertyRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	prop := domain.Property{
		Name:  property,
		Value: req.Value,
		Scope: req.Scope,
	}

	err = h.profile.UpdateProperty(ctx, requesterFromContext(c), userID, prop)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return presenter.Forbidden(c, "only the owner may edit their profile")
		case errors.Is(err, domain.ErrInvalidScope):
			return presenter.BadRequestMessage(c, "invalid scope")
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "account not found")
		default:
			return presenter.InternalError(c, err)
		}
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	// Cancellation is the only shutdown signal. The relay and the
	// reader both send on channels the other side receives from, so
	// neither side may ever close them.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan openprofile.ProfileEvent)

	go h.signal.Realtime(ctx, input, output)

	go func() {
		defer cancel()
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Channels:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Channels),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
