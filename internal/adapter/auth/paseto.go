package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
)

const (
	payloadClaim = "payload"
	issuer       = "storefront"
	defaultTTL   = 12 * time.Hour
)

type PasetoToken struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// New creates the admin token service. Without a configured key tokens only live as
// long as the process.
func New(conf *config.Auth) (*PasetoToken, error) {
	key := paseto.NewV4SymmetricKey()
	if conf.TokenKey != "" {
		var err error
		key, err = paseto.V4SymmetricKeyFromHex(conf.TokenKey)
		if err != nil {
			return nil, fmt.Errorf("invalid token key: %w", err)
		}
	}
	ttl := conf.TokenTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PasetoToken{key: key, ttl: ttl}, nil
}

var _ port.TokenService = (*PasetoToken)(nil)

func (p *PasetoToken) CreateToken(actor domain.Actor) (string, error) {
	if actor == "" {
		return "", domain.ErrTokenCreation
	}
	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(issuer)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(p.ttl))

	err := token.Set(payloadClaim, port.TokenPayload{Actor: actor})
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(issuer))

	parsedToken, err := parser.ParseV4Local(p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	exp, err := parsedToken.GetExpiration()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if time.Now().After(exp) {
		return nil, domain.ErrExpiredToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get(payloadClaim, &payload)
	if err != nil || payload.Actor == "" {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}
