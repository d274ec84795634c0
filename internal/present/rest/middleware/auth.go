package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/openprofile/openprofile"
	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/internal/service"
	"github.com/openprofile/openprofile/internal/usecase"
	"github.com/openprofile/openprofile/visibility"
)

var tracer = otel.Tracer("viewer")

type ViewerMiddleware struct {
	auth   *service.AuthService
	trust  *usecase.TrustUsecase
	config domain.Config
}

func NewViewerMiddleware(
	auth *service.AuthService,
	trust *usecase.TrustUsecase,
	config domain.Config,
) *ViewerMiddleware {
	return &ViewerMiddleware{
		auth:   auth,
		trust:  trust,
		config: config,
	}
}

// IdentifyViewer derives the ViewerContext for the request and stores
// it, together with the requester's user ID, in the request context.
// Every trust signal fails closed: a bad token means anonymous, a bad
// origin means cross-instance, an unknown peer means untrusted.
func (m *ViewerMiddleware) IdentifyViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Viewer.Middleware.IdentifyViewer")
		defer span.End()

		viewer := visibility.ViewerContext{}

		// # session token
		// A Bearer JWT proves the requester is a known local user.
		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 || split[0] != "Bearer" {
				span.RecordError(fmt.Errorf("invalid authentication header"))
			} else {
				result, err := m.auth.AuthToken(ctx, split[1])
				if err != nil {
					span.RecordError(errors.Wrap(err, "ViewerMiddleware.IdentifyViewer: token validation failed"))
				} else {
					viewer.IsAuthenticated = true
					ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.UserID)
					span.SetAttributes(attribute.String("RequesterId", result.UserID))
				}
			}
		}

		// # origin
		// Same-instance means the requester's origin matches this
		// node's canonical base URL.
		origin := c.Request().Header.Get("Origin")
		if origin == "" {
			scheme := c.Scheme()
			origin = scheme + "://" + c.Request().Host
		}
		viewer.IsSameInstance = openprofile.SameOrigin(m.config.BaseURL, origin)

		// # federation trust
		// Server-to-server requests announce their domain and prove
		// it with a token signed by that peer's shared secret. The
		// announcement alone grants nothing.
		if !viewer.IsSameInstance {
			remoteDomain := openprofile.DomainOf(c.Request().Header.Get(domain.RequesterDomainHeader))
			peerToken := c.Request().Header.Get(domain.RequesterTokenHeader)
			if remoteDomain != "" && peerToken != "" {
				server, err := m.trust.Peer(ctx, remoteDomain)
				if err != nil {
					span.RecordError(errors.Wrap(err, "ViewerMiddleware.IdentifyViewer: trust lookup failed"))
				} else if server.Trusted() {
					err := m.auth.AuthPeerToken(ctx, peerToken, server.SharedSecret, remoteDomain)
					if err != nil {
						span.RecordError(errors.Wrap(err, "ViewerMiddleware.IdentifyViewer: peer proof rejected"))
					} else {
						viewer.IsTrustedFederation = true
						ctx = context.WithValue(ctx, domain.RequesterDomainCtxKey, remoteDomain)
						span.SetAttributes(attribute.String("RequesterDomain", remoteDomain))
					}
				}
			}
		}

		ctx = context.WithValue(ctx, domain.ViewerContextCtxKey, viewer)
		span.SetAttributes(
			attribute.String("RequesterType", domain.RequesterTypeString(requesterType(c, viewer))),
			attribute.Bool("IsAuthenticated", viewer.IsAuthenticated),
			attribute.Bool("IsSameInstance", viewer.IsSameInstance),
			attribute.Bool("IsTrustedFederation", viewer.IsTrustedFederation),
		)

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func requesterType(c echo.Context, viewer visibility.ViewerContext) int {
	switch {
	case c.Request().Header.Get(domain.RequesterDomainHeader) != "":
		return domain.RemoteServer
	case viewer.IsAuthenticated && viewer.IsSameInstance:
		return domain.LocalUser
	case viewer.IsAuthenticated:
		return domain.RemoteUser
	default:
		return domain.Unknown
	}
}
