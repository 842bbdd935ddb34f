package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	jwttoken "menuapi/internal/jwt_token"
	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
)

// Outcome is the terminal state of one authentication attempt.
type Outcome int

const (
	// OutcomeNone means no token was presented; the request stays anonymous.
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFail:
		return "fail"
	default:
		return "none"
	}
}

// Result of running a Scheme.
type Result struct {
	Outcome   Outcome
	Principal *domain.Principal
	Err       error
}

func Success(p *domain.Principal) Result { return Result{Outcome: OutcomeSuccess, Principal: p} }
func Failure(err error) Result           { return Result{Outcome: OutcomeFail, Err: err} }
func NoResult() Result                   { return Result{Outcome: OutcomeNone} }

// Scheme authenticates a request.
type Scheme interface {
	Name() string
	Authenticate(r *http.Request) Result
}

// PolicyScheme runs the arbiter and forwards to next only when the request
// still needs validation.
type PolicyScheme struct {
	next Scheme
}

func NewPolicyScheme(next Scheme) *PolicyScheme {
	return &PolicyScheme{next: next}
}

func (s *PolicyScheme) Name() string { return "policy" }

func (s *PolicyScheme) Authenticate(r *http.Request) Result {
	switch d := Arbitrate(r.Context()).(type) {
	case Skip:
		return Success(d.Principal)
	default:
		return s.next.Authenticate(r)
	}
}

// BearerScheme checks a JWT's lifetime locally and then confirms it through
// introspection. A token that fails the local stage gets a second chance
// through introspection alone.
type BearerScheme struct {
	verifier *Verifier
	leeway   time.Duration
	logger   *slog.Logger
}

func NewBearerScheme(verifier *Verifier, leeway time.Duration, logger *slog.Logger) *BearerScheme {
	return &BearerScheme{verifier: verifier, leeway: leeway, logger: logger}
}

func (s *BearerScheme) Name() string { return "bearer" }

func (s *BearerScheme) Authenticate(r *http.Request) Result {
	ctx := r.Context()
	st := requestcontext.AuthStateFrom(ctx)
	if st.Validated || st.Principal.IsAuthenticated() {
		return NoResult()
	}
	token, ok := BearerToken(r)
	if !ok {
		return NoResult()
	}

	tok, localErr := s.validateLocally(token, requestcontext.Now(ctx))
	if localErr == nil {
		if _, err := s.verifier.Confirm(ctx, token); err != nil {
			return Failure(err)
		}
		return Success(domain.NewPrincipal(domain.AuthenticationTypeBearer, tok.PrincipalClaims()))
	}

	s.logger.DebugContext(ctx, "local token validation failed, falling back to introspection",
		"request_id", requestcontext.RequestID(ctx),
		"reason", localErr.Error(),
	)
	p, err := s.verifier.Verify(ctx, token, ClaimsFromToken)
	if err != nil {
		return Failure(errors.Join(localErr, err))
	}
	return Success(p)
}

// validateLocally decodes the token and checks only its lifetime. Signature,
// issuer and audience are left to introspection.
func (s *BearerScheme) validateLocally(token string, now time.Time) (*jwttoken.Token, error) {
	tok, err := jwttoken.DecodeUnverified(token)
	if err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	switch err := tok.ValidateLifetime(now, s.leeway); {
	case err == nil:
		return tok, nil
	case errors.Is(err, jwttoken.ErrExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwttoken.ErrNotYetValid):
		return nil, ErrTokenNotYetValid
	default:
		return nil, errors.Join(ErrMalformedToken, err)
	}
}

// IntrospectScheme authenticates with introspection alone and merges the
// introspection identity into the token's claims.
type IntrospectScheme struct {
	verifier *Verifier
}

func NewIntrospectScheme(verifier *Verifier) *IntrospectScheme {
	return &IntrospectScheme{verifier: verifier}
}

func (s *IntrospectScheme) Name() string { return "introspect" }

func (s *IntrospectScheme) Authenticate(r *http.Request) Result {
	token, ok := BearerToken(r)
	if !ok {
		return NoResult()
	}
	p, err := s.verifier.Verify(r.Context(), token, ClaimsMerged)
	if err != nil {
		return Failure(err)
	}
	return Success(p)
}
