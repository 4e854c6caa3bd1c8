package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/eventops-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

// JWTClaims carries the caller and the tenant it acts for.
type JWTClaims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// SetContextFromToken verifies an access token and attaches the caller
	// to ctx as request data.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueAccessToken(userID, tenantID uuid.UUID) (string, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	accessTTL    time.Duration
	parser       *jwt.Parser
}

func NewAuthService(log *logger.Logger, jwtSecretKey string, accessTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		log:          serviceLog,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (as *authService) IssueAccessToken(userID, tenantID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if strings.TrimSpace(tokenString) == "" {
		return ctx, fmt.Errorf("token is empty")
	}
	parsedToken, err := as.parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil || tenantID == uuid.Nil {
		return ctx, fmt.Errorf("invalid tenant id in token")
	}

	rd := ctxutil.GetRequestData(ctx)
	next := &ctxutil.RequestData{UserID: userID, TenantID: tenantID}
	if rd != nil {
		next.CurrentOccurrenceID = rd.CurrentOccurrenceID
	}
	return ctxutil.WithRequestData(ctx, next), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
