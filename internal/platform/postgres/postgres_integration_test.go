//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"menuapi/internal/platform/config"
	"menuapi/pkg/testutil/containers"
)

func TestOpenAppliesPoolLimits(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)

	db, err := Open(context.Background(), config.Database{
		URL:             pg.DSN,
		MaxOpenConns:    3,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Equal(t, 3, db.Stats().MaxOpenConnections)
}
