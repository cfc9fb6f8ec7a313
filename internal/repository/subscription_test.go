package repository

import (
	"testing"

	"shipits/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionUpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)

	owner := createTestUser(t, db, "owner")
	fan := createTestUser(t, db, "fan")
	project := createTestProject(t, db, owner.ID, "Ship It")

	first, err := repo.Upsert(testCtx(), fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := repo.Upsert(testCtx(), fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("user_id = ? AND project_id = ?", fan.ID, project.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscriptionResubscribeReactivates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)

	owner := createTestUser(t, db, "owner")
	fan := createTestUser(t, db, "fan")
	project := createTestProject(t, db, owner.ID, "Ship It")

	_, err := repo.Upsert(testCtx(), fan.ID, project.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(testCtx(), fan.ID, project.ID))

	sub, err := repo.Get(testCtx(), fan.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, sub.IsActive)

	sub, err = repo.Upsert(testCtx(), fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
}

func TestActiveSubscriberIDsExcludesInactive(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)

	owner := createTestUser(t, db, "owner")
	active := createTestUser(t, db, "active")
	lapsed := createTestUser(t, db, "lapsed")
	project := createTestProject(t, db, owner.ID, "Ship It")

	_, err := repo.Upsert(testCtx(), active.ID, project.ID)
	require.NoError(t, err)
	_, err = repo.Upsert(testCtx(), lapsed.ID, project.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(testCtx(), lapsed.ID, project.ID))

	ids, err := repo.ActiveSubscriberIDs(testCtx(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{active.ID}, ids)
}
