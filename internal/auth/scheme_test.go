package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"menuapi/internal/auth/introspection"
	"menuapi/internal/auth/mocks"
	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
	"menuapi/pkg/testutil"
)

const testLeeway = 5 * time.Minute

var activeResult = &introspection.Result{
	Active:   true,
	Sub:      "u1",
	Username: "Alice",
	Scope:    "read write",
	Iss:      testIssuer,
	Aud:      introspection.Audience{testAudience},
}

func newBearer(t *testing.T) (*BearerScheme, *mocks.MockIntrospector) {
	t.Helper()
	ctrl := gomock.NewController(t)
	introspector := mocks.NewMockIntrospector(ctrl)
	logger, _ := bufferLogger()
	return NewBearerScheme(NewVerifier(introspector, testIssuer, testAudience), testLeeway, logger), introspector
}

func bearerRequest(token string) *http.Request {
	return withBearer(httptest.NewRequest(http.MethodGet, "/api/menus", nil), token)
}

func TestBearerScheme_NoToken(t *testing.T) {
	scheme, _ := newBearer(t)
	res := scheme.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, OutcomeNone, res.Outcome)
}

func TestBearerScheme_DiscardsTokenOnValidatedRequest(t *testing.T) {
	scheme, _ := newBearer(t)
	p := domain.NewPrincipal(domain.AuthenticationTypeBearer, nil)
	token := testutil.TokenExpiringIn(t, "u1", time.Hour)

	marked := bearerRequest(token)
	marked = marked.WithContext(requestcontext.MarkIntrospectionValidated(marked.Context(), p))
	assert.Equal(t, OutcomeNone, scheme.Authenticate(marked).Outcome)

	authed := bearerRequest(token)
	authed = authed.WithContext(requestcontext.WithPrincipal(authed.Context(), p))
	assert.Equal(t, OutcomeNone, scheme.Authenticate(authed).Outcome)
}

func TestBearerScheme_LocalSuccessConfirmedByIntrospection(t *testing.T) {
	scheme, introspector := newBearer(t)
	token := testutil.TokenExpiringIn(t, "u1", time.Hour)
	introspector.EXPECT().Introspect(gomock.Any(), token).Return(activeResult, nil)

	res := scheme.Authenticate(bearerRequest(token))
	require.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "u1", res.Principal.NameIdentifier())
	// No introspection merge on this path.
	assert.False(t, res.Principal.HasClaim(domain.ClaimName))
}

func TestBearerScheme_InactiveFails(t *testing.T) {
	scheme, introspector := newBearer(t)
	token := testutil.TokenExpiringIn(t, "u1", time.Hour)
	introspector.EXPECT().Introspect(gomock.Any(), token).Return(&introspection.Result{Active: false}, nil)

	res := scheme.Authenticate(bearerRequest(token))
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrTokenInactive)
	assert.Nil(t, res.Principal)
}

func TestBearerScheme_UnreachableFails(t *testing.T) {
	scheme, introspector := newBearer(t)
	token := testutil.TokenExpiringIn(t, "u1", time.Hour)
	introspector.EXPECT().Introspect(gomock.Any(), token).
		Return(nil, &introspection.Error{Kind: introspection.ErrUnreachable, StatusCode: http.StatusBadGateway})

	res := scheme.Authenticate(bearerRequest(token))
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrIntrospectionUnreachable)
}

func TestBearerScheme_IssuerAndAudienceMismatch(t *testing.T) {
	token := testutil.TokenExpiringIn(t, "u1", time.Hour)

	t.Run("issuer", func(t *testing.T) {
		scheme, introspector := newBearer(t)
		introspector.EXPECT().Introspect(gomock.Any(), token).Return(&introspection.Result{Active: true, Iss: "Other"}, nil)
		res := scheme.Authenticate(bearerRequest(token))
		assert.ErrorIs(t, res.Err, ErrIssuerMismatch)
	})

	t.Run("audience", func(t *testing.T) {
		scheme, introspector := newBearer(t)
		introspector.EXPECT().Introspect(gomock.Any(), token).
			Return(&introspection.Result{Active: true, Iss: testIssuer, Aud: introspection.Audience{"other-app"}}, nil)
		res := scheme.Authenticate(bearerRequest(token))
		assert.ErrorIs(t, res.Err, ErrAudienceMismatch)
	})
}

func TestBearerScheme_ExpiredTokenFallsBackToIntrospection(t *testing.T) {
	scheme, introspector := newBearer(t)
	token := testutil.TokenExpiringIn(t, "u1", -time.Hour)
	introspector.EXPECT().Introspect(gomock.Any(), token).Return(activeResult, nil)

	res := scheme.Authenticate(bearerRequest(token))
	require.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "u1", res.Principal.NameIdentifier())
	assert.True(t, res.Principal.IsAuthenticated())
}

func TestBearerScheme_ExpiryUsesRequestTimeAndLeeway(t *testing.T) {
	scheme, introspector := newBearer(t)
	now := time.Now()
	token := testutil.SignToken(t, map[string]any{"sub": "u1", "exp": now.Add(-4 * time.Minute).Unix()})
	introspector.EXPECT().Introspect(gomock.Any(), token).Return(activeResult, nil)

	r := bearerRequest(token)
	r = r.WithContext(requestcontext.WithTime(r.Context(), now))
	tok, err := scheme.validateLocally(token, now)
	require.NoError(t, err)
	assert.NotNil(t, tok)

	assert.Equal(t, OutcomeSuccess, scheme.Authenticate(r).Outcome)
}

func TestBearerScheme_FallbackFailureKeepsBothReasons(t *testing.T) {
	scheme, introspector := newBearer(t)
	token := testutil.TokenExpiringIn(t, "u1", -time.Hour)
	introspector.EXPECT().Introspect(gomock.Any(), token).Return(&introspection.Result{Active: false}, nil)

	res := scheme.Authenticate(bearerRequest(token))
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrTokenExpired)
	assert.ErrorIs(t, res.Err, ErrTokenInactive)
}

func TestBearerScheme_OpaqueTokenFailsEvenWhenActive(t *testing.T) {
	scheme, introspector := newBearer(t)
	introspector.EXPECT().Introspect(gomock.Any(), "opaque").Return(activeResult, nil)

	res := scheme.Authenticate(bearerRequest("opaque"))
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrMalformedToken)
}

func TestIntrospectScheme(t *testing.T) {
	token := testutil.SignToken(t, map[string]any{"sub": "u1"})

	t.Run("no token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		scheme := NewIntrospectScheme(NewVerifier(mocks.NewMockIntrospector(ctrl), testIssuer, testAudience))
		assert.Equal(t, OutcomeNone, scheme.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil)).Outcome)
	})

	t.Run("merges introspection identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		introspector := mocks.NewMockIntrospector(ctrl)
		introspector.EXPECT().Introspect(gomock.Any(), token).Return(activeResult, nil)

		res := NewIntrospectScheme(NewVerifier(introspector, testIssuer, testAudience)).Authenticate(bearerRequest(token))
		require.Equal(t, OutcomeSuccess, res.Outcome)
		assert.Equal(t, "u1", res.Principal.NameIdentifier())
		assert.Equal(t, "Alice", res.Principal.Name())
		assert.Equal(t, []string{"read write"}, res.Principal.FindAll(domain.ClaimScope))
	})

	t.Run("inactive", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		introspector := mocks.NewMockIntrospector(ctrl)
		introspector.EXPECT().Introspect(gomock.Any(), token).Return(&introspection.Result{}, nil)

		res := NewIntrospectScheme(NewVerifier(introspector, testIssuer, testAudience)).Authenticate(bearerRequest(token))
		assert.ErrorIs(t, res.Err, ErrTokenInactive)
	})
}

func TestPolicyScheme(t *testing.T) {
	p := domain.NewPrincipal(domain.AuthenticationTypeBearer, []domain.Claim{{Type: domain.ClaimNameIdentifier, Value: "u1"}})

	t.Run("skip reuses installed principal", func(t *testing.T) {
		next, _ := newBearer(t)
		r := bearerRequest("anything")
		r = r.WithContext(requestcontext.MarkIntrospectionValidated(context.Background(), p))

		res := NewPolicyScheme(next).Authenticate(r)
		require.Equal(t, OutcomeSuccess, res.Outcome)
		assert.Same(t, p, res.Principal)
	})

	t.Run("validate forwards to bearer", func(t *testing.T) {
		next, introspector := newBearer(t)
		token := testutil.TokenExpiringIn(t, "u1", time.Hour)
		introspector.EXPECT().Introspect(gomock.Any(), token).Return(activeResult, nil)

		res := NewPolicyScheme(next).Authenticate(bearerRequest(token))
		assert.Equal(t, OutcomeSuccess, res.Outcome)
	})
}
