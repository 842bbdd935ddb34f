package auth

import (
	"context"

	"menuapi/pkg/domain"
	"menuapi/pkg/requestcontext"
)

// Decision is the arbiter's choice for one request: Skip or Validate.
type Decision interface {
	decision()
}

// Skip means the request already carries a principal; authentication is a
// no-op that reuses it.
type Skip struct {
	Principal *domain.Principal
}

// Validate means the full bearer scheme must run.
type Validate struct{}

func (Skip) decision()     {}
func (Validate) decision() {}

// Arbitrate reads only request-scoped state. A marked request or one with an
// authenticated principal is skipped; anything else is validated.
func Arbitrate(ctx context.Context) Decision {
	st := requestcontext.AuthStateFrom(ctx)
	if st.Validated || st.Principal.IsAuthenticated() {
		return Skip{Principal: st.Principal}
	}
	return Validate{}
}
