package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/govhotline/backend/internal/ai"
	"github.com/govhotline/backend/internal/analysis"
	"github.com/govhotline/backend/internal/db"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()
	s, err := db.Open(ctx, "sqlite://")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func offlineAnalysis() *analysis.Service {
	return analysis.NewService(&ai.MockCompleter{}, time.Second, zerolog.Nop())
}
