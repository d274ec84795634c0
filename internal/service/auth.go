package service

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/openprofile/openprofile/internal/domain"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	config *domain.Config
}

func NewAuthService(config *domain.Config) *AuthService {
	return &AuthService{config: config}
}

type AuthResult struct {
	UserID string
}

// AuthToken validates a session JWT and returns the requester's user
// ID. Tokens are HS256-signed with the node's session secret and must
// be issued for this node's FQDN.
func (s *AuthService) AuthToken(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}
	if !parsed.Valid {
		err := fmt.Errorf("invalid token")
		span.RecordError(err)
		return nil, err
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == s.config.FQDN {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		err := fmt.Errorf("jwt audience mismatch: expected %s", s.config.FQDN)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject == "" {
		err := fmt.Errorf("missing subject")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{UserID: claims.Subject}, nil
}

// AuthPeerToken validates a federation announcement token. The peer
// signs HS256 with the shared secret registered for it, with iss set
// to its own domain and aud to this node's FQDN. A peer without a
// registered secret can never prove anything.
func (s *AuthService) AuthPeerToken(ctx context.Context, token, secret, peerDomain string) error {
	_, span := tracer.Start(ctx, "Auth.Service.AuthPeerToken")
	defer span.End()

	if secret == "" {
		err := fmt.Errorf("no shared secret registered for %s", peerDomain)
		span.RecordError(err)
		return err
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		span.RecordError(errors.Wrap(err, "peer token validation failed"))
		return err
	}
	if !parsed.Valid {
		err := fmt.Errorf("invalid peer token")
		span.RecordError(err)
		return err
	}

	if claims.Issuer != peerDomain {
		err := fmt.Errorf("peer token issuer mismatch: expected %s", peerDomain)
		span.RecordError(err)
		return err
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == s.config.FQDN {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		err := fmt.Errorf("peer token audience mismatch: expected %s", s.config.FQDN)
		span.RecordError(err)
		return err
	}

	return nil
}
