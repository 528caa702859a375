package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	jwt2 "github.com/Velmor/DuoChat/chat-service/internal/domain/jwt"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenUtilImpl struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

func NewTokenUtil(cfg *config.Config) (*TokenUtilImpl, error) {
	privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse public key")
	}

	return &TokenUtilImpl{
		privateKey: privKey,
		publicKey:  pubKey,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
	}, nil
}

func (t *TokenUtilImpl) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	return t.generate(userID, jwt2.TypeAccess, t.accessTTL)
}

func (t *TokenUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	return t.generate(userID, jwt2.TypeRefresh, t.refreshTTL)
}

func (t *TokenUtilImpl) generate(userID uuid.UUID, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.privateKey)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign "+tokenType+" token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (t *TokenUtilImpl) ValidateAccessToken(raw string) (jwt2.Claims, error) {
	return t.validate(raw, jwt2.TypeAccess)
}

func (t *TokenUtilImpl) ValidateRefreshToken(raw string) (jwt2.Claims, error) {
	return t.validate(raw, jwt2.TypeRefresh)
}

func (t *TokenUtilImpl) validate(raw, wantType string) (jwt2.Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return t.publicKey, nil
	}, jwt.WithIssuedAt())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return jwt2.Claims{}, customErrors.ErrExpiredToken
		}
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	if !token.Valid {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return jwt2.Claims{}, customErrors.WrapInternal(
			errors.New("claims have unexpected type"), "validate token",
		)
	}

	if claims.TokenType != wantType {
		return jwt2.Claims{}, customErrors.ErrWrongTokenType
	}

	if t.issuer != "" && claims.Issuer != t.issuer {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	if t.audience != "" {
		okAudi := false
		for _, a := range claims.Audience {
			if a == t.audience {
				okAudi = true
				break
			}
		}
		if !okAudi {
			return jwt2.Claims{}, customErrors.ErrInvalidToken
		}
	}

	return *claims, nil
}
