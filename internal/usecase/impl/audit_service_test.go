package impl

import (
	"testing"
	"time"

	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_RecordAndList(t *testing.T) {
	env := newTestEnv(t)
	actor := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := env.audits.Record(t.Context(), usecase.RecordAuditInput{
			Action:     "user.update",
			EntityType: "user",
			EntityID:   "u1",
			UserID:     actor,
		})
		require.NoError(t, err)
	}

	page, err := env.audits.List(t.Context(), usecase.ListAuditInput{Page: 1, Limit: 2, UserID: &actor})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
}

func TestAuditService_Statistics(t *testing.T) {
	env := newTestEnv(t)
	actor := uuid.New()

	_, err := env.audits.Record(t.Context(), usecase.RecordAuditInput{
		Action: "user.create", EntityType: "user", EntityID: "u1", UserID: actor,
	})
	require.NoError(t, err)
	_, err = env.audits.Record(t.Context(), usecase.RecordAuditInput{
		Action: "role.create", EntityType: "role", EntityID: "r1", UserID: actor,
	})
	require.NoError(t, err)

	stats, err := env.audits.Statistics(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByAction["user.create"])
	assert.EqualValues(t, 1, stats.ByEntityType["role"])
	assert.EqualValues(t, 2, stats.Last24Hours)
}

func TestAuditService_Purge(t *testing.T) {
	env := newTestEnv(t)
	actor := uuid.New()
	other := uuid.New()

	for _, userID := range []uuid.UUID{actor, actor, other} {
		_, err := env.audits.Record(t.Context(), usecase.RecordAuditInput{
			Action: "user.update", EntityType: "user", EntityID: "u1", UserID: userID,
		})
		require.NoError(t, err)
	}

	removed, err := env.audits.PurgeForUser(t.Context(), actor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	removed, err = env.audits.PurgeOlderThan(t.Context(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	stats, err := env.audits.Statistics(t.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
