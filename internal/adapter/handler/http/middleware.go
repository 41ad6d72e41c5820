package http

import (
	"crypto/subtle"
	"strings"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/gin-gonic/gin"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const authPayloadKey = "auth_payload"
const webhookSecretHeader = "X-Webhook-Secret"

func authCheck(h *Handler, tokenService port.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			h.handleAbort(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Split(header, " ")
		if len(words) != 2 {
			h.handleAbort(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			h.handleAbort(ctx, domain.ErrInvalidAuthorizationType)
			return
		}
		token := words[1]
		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			h.handleAbort(ctx, err)
			return
		}

		ctx.Set(authPayloadKey, payload)

		ctx.Next()
	}
}

// webhookCheck admits gateway callbacks carrying the shared secret. An empty secret
// rejects every callback.
func webhookCheck(h *Handler, secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		given := ctx.Request.Header.Get(webhookSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			h.handleAbort(ctx, domain.ErrForbidden)
			return
		}
		ctx.Next()
	}
}

// actor returns the operator from the admin token, or the customer actor on public routes.
func actor(ctx *gin.Context) domain.Actor {
	if v, ok := ctx.Get(authPayloadKey); ok {
		if payload, ok := v.(*port.TokenPayload); ok {
			return payload.Actor
		}
	}
	return domain.ActorCustomer
}
