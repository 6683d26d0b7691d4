package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T, expiration time.Duration) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "riskcore-test",
		Expiration: expiration,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t, 15*time.Minute)
	userID, tenantID := uuid.New(), uuid.New()

	token, err := svc.GenerateToken(userID, tenantID, []string{RoleUnderwriter})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, []string{RoleUnderwriter}, claims.Roles)
	assert.Equal(t, "riskcore-test", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestGenerateAndValidateToken_RSA(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Expiration: time.Minute})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM)})
	require.NoError(t, err)

	token, err := issuer.GenerateToken(uuid.New(), uuid.New(), []string{RoleAdmin})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(RoleAdmin))

	_, err = validator.GenerateToken(uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrValidationOnly)
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.ErrorIs(t, err, ErrNoKeyMaterial)
}

func TestValidateToken_Rejections(t *testing.T) {
	expired := newTestJWTService(t, -time.Hour)
	token, err := expired.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.Error(t, err, "expired token")

	other, err := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "riskcore-test", Expiration: time.Minute})
	require.NoError(t, err)
	token, err = other.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	_, err = newTestJWTService(t, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	wrongIssuer, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else"})
	require.NoError(t, err)
	token, err = wrongIssuer.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	_, err = newTestJWTService(t, time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestValidateToken_AudienceAndLeeway(t *testing.T) {
	cfg := JWTConfig{Secret: "s", Audience: "riskcore", Expiration: time.Minute, Leeway: 30 * time.Second}
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)
	issuedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(80 * time.Second) }
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err, "within leeway")

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	cfg.Audience = "ledger"
	other, err := NewJWTService(cfg)
	require.NoError(t, err)
	other.now = func() time.Time { return issuedAt }
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
}

func TestHasAnyRole(t *testing.T) {
	claims := Claims{Roles: []string{RoleAuditor}}

	assert.True(t, claims.HasRole(RoleAuditor))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.True(t, claims.HasAnyRole(RoleUnderwriter, RoleAuditor))
	assert.False(t, claims.HasAnyRole(RoleUnderwriter, RoleAdmin))
	assert.False(t, claims.HasAnyRole())
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t, time.Minute)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	tenantID := uuid.New()

	var seen *Claims
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen, _ = ClaimsFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/riskcore.v1.RiskService/GetAssessment"}

	withToken := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	}

	good, err := svc.GenerateToken(uuid.New(), tenantID, []string{RoleUnderwriter})
	require.NoError(t, err)
	_, err = interceptor(withToken(good), nil, info, handler)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, tenantID, seen.TenantID)

	noTenant, err := svc.GenerateToken(uuid.New(), uuid.Nil, nil)
	require.NoError(t, err)
	_, err = interceptor(withToken(noTenant), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = interceptor(context.Background(), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = interceptor(withToken("garbage"), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	seen = nil
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
	require.NoError(t, err)
	assert.Nil(t, seen)
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f fakeStream) Context() context.Context { return f.ctx }

func TestStreamAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t, time.Minute)
	interceptor := StreamAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Watch"})
	tenantID := uuid.New()

	var seen *Claims
	handler := func(_ any, ss grpc.ServerStream) error {
		seen, _ = ClaimsFromContext(ss.Context())
		return nil
	}
	info := &grpc.StreamServerInfo{FullMethod: "/riskcore.v1.RiskService/Watch"}

	token, err := svc.GenerateToken(uuid.New(), tenantID, nil)
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer "+token))
	require.NoError(t, interceptor(nil, fakeStream{ctx: ctx}, info, handler))
	require.NotNil(t, seen)
	assert.Equal(t, tenantID, seen.TenantID)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic "+token))
	err = interceptor(nil, fakeStream{ctx: ctx}, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	seen = nil
	require.NoError(t, interceptor(nil, fakeStream{ctx: context.Background()}, &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}, handler))
	assert.Nil(t, seen)
}
