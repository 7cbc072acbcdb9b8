package httpadapter

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"viral-reward/internal/core/domain"
)

var errUnauthenticated = errors.New("unauthenticated")

type contextKey string

const contextKeyActor contextKey = "actor"

// Claims is the token body issued by the identity provider. The subject is
// the account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 bearer tokens and turns them into actors.
type Verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifier builds a verifier for key. Empty issuer or audience are not
// checked.
func NewVerifier(key *rsa.PublicKey, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{key: key, parser: jwt.NewParser(opts...)}
}

// LoadVerifier reads a PEM encoded RSA public key from path.
func LoadVerifier(path, issuer, audience string) (*Verifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return NewVerifier(key, issuer, audience), nil
}

// Verify validates token and returns the actor it names.
func (v *Verifier) Verify(token string) (domain.Actor, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}
	actor := domain.Actor{ID: claims.Subject, Role: domain.Role(claims.Role)}
	if actor.ID == "" || !actor.Role.Valid() {
		return domain.Actor{}, fmt.Errorf("%w: token lacks subject or role", errUnauthenticated)
	}
	return actor, nil
}

// authenticate resolves the actor from the Authorization header. Browsers
// cannot set headers on a websocket handshake, so the access_token query
// parameter is accepted as well.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, r, fmt.Errorf("%w: missing bearer token", errUnauthenticated))
			return
		}
		actor, err := h.verifier.Verify(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyActor, actor)))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(contextKeyActor).(domain.Actor)
	return actor
}
