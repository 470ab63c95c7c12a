// Package middleware contain utilities middleware code
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// unauthorized aborts with 401 and expires the session cookies so that the
// next page navigation is sent to login.
func unauthorized(ctx *gin.Context, msg string) {
	auth.ClearSessionCookies(ctx)
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
		Error: msg,
	})
}

// RequireAuth function is a middleware in Go that validates a Bearer token in the Authorization
// header and checks if the user associated with the token exists and is not expired before allowing
// access to the endpoint.
func RequireAuth(db *database.DBinstanceStruct) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		token, err := auth.ValidatedToken(tokenString)

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(ctx, "Access token expired")
				return
			}

			unauthorized(ctx, fmt.Sprintf("Failed to validate token: %s", err.Error()))
			return
		}

		if !token.Valid {
			unauthorized(ctx, "Invalid access token")
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			unauthorized(ctx, "Invalid access token")
			return
		}
		ctx.Set("claims", claims)

		if claims.Issuer != auth.JwtIssuer {
			unauthorized(ctx, "Invalid token issuer")
			return
		}

		var foundUser model.User

		if err := db.Where("id = ?", claims.Subject).First(&foundUser).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				unauthorized(ctx, "User not exist")
				return
			}

			ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve user data: %s", err.Error()),
			})
			return
		}

		ctx.Set("user", foundUser)
		ctx.Next()
	}
}
