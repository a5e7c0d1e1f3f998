package security

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const (
	contextUserID contextKey = "userID"
	contextRole   contextKey = "role"
)

type UserClaims struct {
	ID   primitive.ObjectID `json:"id"`
	Role string             `json:"role"`
	jwt.StandardClaims
}

func tokenSecret() []byte {
	return []byte(os.Getenv("TOKEN_SECRET"))
}

// NewAccessToken issues a signed token carrying the user's id and role,
// valid for 24 hours.
func NewAccessToken(userID primitive.ObjectID, role string) (string, error) {
	claims := UserClaims{
		ID:   userID,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSecret())
}

func ParseAccessToken(accessToken string) (*UserClaims, error) {
	parsed, err := jwt.ParseWithClaims(accessToken, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tokenSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*UserClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorClaimsInvalid)
	}
	return claims, nil
}

// ContextWithUser returns a context carrying the authenticated user's id
// and role, the same shape Authenticate produces.
func ContextWithUser(ctx context.Context, userID primitive.ObjectID, role string) context.Context {
	ctx = context.WithValue(ctx, contextUserID, userID)
	return context.WithValue(ctx, contextRole, role)
}

func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(contextUserID).(primitive.ObjectID)
	return id, ok
}

func Role(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(contextRole).(string)
	return role, ok
}

func writeUnauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}

// Authenticate requires a Bearer token and puts the user's id and role
// into the request context.
func Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeUnauthorized(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := ParseAccessToken(parts[1])
		if err != nil {
			writeUnauthorized(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), claims.ID, claims.Role)))
	}
}

// RoleRequired gates a handler on the authenticated user's role.
func RoleRequired(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, ok := Role(r.Context())
		if !ok {
			writeUnauthorized(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeUnauthorized(w, http.StatusForbidden, "Access denied: insufficient role")
	}
}
