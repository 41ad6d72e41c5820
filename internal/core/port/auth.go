package port

import "github.com/MikeRez0/ypstorefront/internal/core/domain"

type TokenPayload struct {
	Actor domain.Actor
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(actor domain.Actor) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
