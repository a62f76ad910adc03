package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// Константы для имен JWT claims
const (
	jwtClaimUserID = "user_id"
)

// ContextWithUserID returns ctx carrying claims for userID, as Authenticate would.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userContextKey, jwt.MapClaims{jwtClaimUserID: float64(userID)})
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context or invalid type")
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	userIDFloat, ok := userIDClaim.(float64)
	if !ok {
		userIDStr, okStr := userIDClaim.(string)
		if okStr {
			userIDInt, err := strconv.Atoi(userIDStr)
			if err == nil {
				if userIDInt <= 0 {
					return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userIDInt)
				}
				return userIDInt, nil
			}
		}
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", jwtClaimUserID, userIDClaim)
	}

	if userIDFloat != float64(int(userIDFloat)) {
		return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, userIDFloat)
	}

	userID := int(userIDFloat)
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}

	return userID, nil
}
