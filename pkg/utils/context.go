package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	HolderIDKey contextKey = "holder_id"
)

// GetHolderIDFromContext returns the authenticated holder identity placed by
// the identity middleware.
func GetHolderIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	holderVal := ctx.Value(HolderIDKey)
	if holderVal == nil {
		return uuid.Nil, false
	}

	holderStr, ok := holderVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	holderID, err := uuid.Parse(holderStr)
	if err != nil {
		return uuid.Nil, false
	}

	return holderID, true
}

func SetHolderContext(ctx context.Context, holderID uuid.UUID) context.Context {
	return context.WithValue(ctx, HolderIDKey, holderID.String())
}
