// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"randevu/models"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenVerifier is the slice of the Firebase Auth client the middleware needs.
// *auth.Client satisfies it; tests substitute a stub.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies the Bearer ID token and stores the caller's
// Identity in the context. With required=false, requests without a token pass
// through unauthenticated; with required=true they are rejected. A present but
// invalid token is rejected either way.
func FirebaseAuthMiddleware(verifier TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
				return
			}
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		tok, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		ident := models.Identity{
			UID:       tok.UID,
			Anonymous: tok.Firebase.SignInProvider == "anonymous",
		}
		if email, ok := tok.Claims["email"].(string); ok {
			ident.Email = email
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// IdentityFrom retrieves the authenticated identity placed by the middleware.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	ident, ok := v.(models.Identity)
	return ident, ok
}
