package server

import (
	"context"
	"strings"
	"time"

	"agentdate/internal/middleware"
	"agentdate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "agentdate-api"
	tokenAudience = "agentdate-client"

	authMethodAPIKey  = "api_key"
	authMethodSession = "session"
)

// sessionIdentity carries the claims the identity provider attests to.
type sessionIdentity struct {
	XUserID   string
	XHandle   string
	AvatarURL string
}

// NewSessionToken signs a session JWT for the given provider identity. The
// identity provider callback uses this after a successful OAuth exchange;
// tests use it to mint identities directly.
func NewSessionToken(secret, xUserID, xHandle, avatarURL string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":    tokenIssuer,
		"aud":    tokenAudience,
		"sub":    xUserID,
		"handle": xHandle,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	if avatarURL != "" {
		claims["avatar_url"] = avatarURL
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseSessionToken validates a session JWT and extracts the provider identity.
func (s *Server) parseSessionToken(tokenString string) (*sessionIdentity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	handle, ok := claims["handle"].(string)
	if !ok || handle == "" {
		return nil, models.NewUnauthorizedError("Invalid handle claim")
	}

	identity := &sessionIdentity{XUserID: sub, XHandle: handle}
	if avatar, avatarOk := claims["avatar_url"].(string); avatarOk {
		identity.AvatarURL = avatar
	}
	return identity, nil
}

// bearerToken extracts the credential from X-API-Key or Authorization: Bearer.
func bearerToken(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired returns the authentication middleware. Two credential kinds
// are accepted: an agent API key ("ad_" prefix, resolves the agent row
// directly) or a session JWT from the identity provider (resolves the
// claimed user and, when present, their agent).
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential := bearerToken(c)
		if credential == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		if strings.HasPrefix(credential, models.APIKeyPrefix) {
			if !models.ValidAPIKeyFormat(credential) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid API key"))
			}
			agent, err := s.agentRepo.GetByAPIKey(c.Context(), credential)
			if err != nil {
				return models.RespondWithError(c, 0, err)
			}
			s.storeIdentity(c, agent.UserID, agent.ID, authMethodAPIKey)
			return c.Next()
		}

		identity, err := s.parseSessionToken(credential)
		if err != nil {
			return models.RespondWithError(c, 0, err)
		}

		user, err := s.userRepo.GetByXUserID(c.Context(), identity.XUserID)
		if err != nil {
			return models.RespondWithError(c, 0, err)
		}
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Claim your account before using the API"))
		}

		var agentID uint
		if agent, agentErr := s.agentRepo.GetByUserID(c.Context(), user.ID); agentErr == nil {
			agentID = agent.ID
		}
		s.storeIdentity(c, user.ID, agentID, authMethodSession)
		return c.Next()
	}
}

// storeIdentity records who is calling in Fiber locals and the user context
// so the structured logger tags every downstream record.
func (s *Server) storeIdentity(c *fiber.Ctx, userID, agentID uint, method string) {
	c.Locals("userID", userID)
	c.Locals("authMethod", method)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	if agentID != 0 {
		c.Locals("agentID", agentID)
		ctx = context.WithValue(ctx, middleware.AgentIDKey, agentID)
	}
	c.SetUserContext(ctx)
}

// ClaimAccount handles POST /api/auth/claim. The session JWT itself is the
// proof of identity; claiming binds the provider identity to the user row an
// agent may have pre-registered for the handle.
func (s *Server) ClaimAccount(c *fiber.Ctx) error {
	credential := bearerToken(c)
	if credential == "" || strings.HasPrefix(credential, models.APIKeyPrefix) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("A session token is required to claim an account"))
	}

	identity, err := s.parseSessionToken(credential)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	user, err := s.agentService.ClaimUser(c.Context(), identity.XUserID, identity.XHandle, identity.AvatarURL)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	return c.JSON(user)
}
