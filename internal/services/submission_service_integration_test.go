//go:build integration

package services

import (
	"context"
	"database/sql"
	"testing"

	"gearreport/internal/models"
	contextutils "gearreport/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubmission(t *testing.T, svc *SubmissionService, name string) *models.Submission {
	t.Helper()

	created, err := svc.CreateSubmission(context.Background(), &models.Submission{
		Name:      name,
		Email:     name + "@example.com",
		Location:  "Vänern",
		Latitude:  sql.NullFloat64{Float64: 58.95, Valid: true},
		Longitude: sql.NullFloat64{Float64: 13.30, Valid: true},
		Images:    []string{"https://cdn.example.com/" + name + ".jpg"},
		Equipment: []models.EquipmentEntry{
			{Category: models.CategoryHooks, Quantity: models.QuantityMany},
		},
	})
	require.NoError(t, err)
	return created
}

func TestSubmissionService_CreateAndGet(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	created := seedSubmission(t, svc, "erik")
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.GetSubmissionByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "erik", fetched.Name)
	assert.Equal(t, "erik@example.com", fetched.Email)
	assert.True(t, fetched.HasCoordinates())
	require.Len(t, fetched.Equipment, 1)
	assert.Equal(t, models.CategoryHooks, fetched.Equipment[0].Category)
	assert.False(t, fetched.ApprovedAt.Valid)
}

func TestSubmissionService_GetByID_NotFound(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())

	_, err := svc.GetSubmissionByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestSubmissionService_StatusTransitions(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	created := seedSubmission(t, svc, "anna")

	approved, err := svc.UpdateSubmissionStatus(ctx, created.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.True(t, approved.ApprovedAt.Valid)

	// Moving away from approved clears the approval timestamp
	rejected, err := svc.UpdateSubmissionStatus(ctx, created.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.False(t, rejected.ApprovedAt.Valid)

	_, err = svc.UpdateSubmissionStatus(ctx, "00000000-0000-0000-0000-000000000000", models.StatusApproved)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestSubmissionService_GetApprovedOnly(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	first := seedSubmission(t, svc, "first")
	seedSubmission(t, svc, "second")

	_, err := svc.UpdateSubmissionStatus(ctx, first.ID, models.StatusApproved)
	require.NoError(t, err)

	approved, err := svc.GetApprovedSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)
}

func TestSubmissionService_Pagination(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		seedSubmission(t, svc, name)
	}

	page1, total, err := svc.GetSubmissionsPaginated(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page1, 2)

	page2, total, err := svc.GetSubmissionsPaginated(ctx, 2, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page2, 1)

	pending, total, err := svc.GetSubmissionsPaginated(ctx, 1, 10, string(models.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, pending, 3)

	approvedOnly, total, err := svc.GetSubmissionsPaginated(ctx, 1, 10, string(models.StatusApproved))
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, approvedOnly)
}

func TestSubmissionService_AdjustEquipmentCount(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	created := seedSubmission(t, svc, "adjust")

	count := 12.0
	adjusted, err := svc.AdjustEquipmentCount(ctx, created.ID, 0, &count)
	require.NoError(t, err)
	require.NotNil(t, adjusted.Equipment[0].AdminAdjustedCount)
	assert.Equal(t, 12.0, *adjusted.Equipment[0].AdminAdjustedCount)

	// The override survives a round trip through the database
	fetched, err := svc.GetSubmissionByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Equipment[0].AdminAdjustedCount)
	assert.Equal(t, 12.0, *fetched.Equipment[0].AdminAdjustedCount)

	cleared, err := svc.AdjustEquipmentCount(ctx, created.ID, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.Equipment[0].AdminAdjustedCount)

	_, err = svc.AdjustEquipmentCount(ctx, created.ID, 5, &count)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))
}

func TestSubmissionService_DeleteAndCount(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewSubmissionService(db, testLogger())
	ctx := context.Background()

	first := seedSubmission(t, svc, "keep")
	second := seedSubmission(t, svc, "remove")

	_, err := svc.UpdateSubmissionStatus(ctx, first.ID, models.StatusApproved)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubmission(ctx, second.ID))

	err = svc.DeleteSubmission(ctx, second.ID)
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.StatusApproved])
	assert.Equal(t, 0, counts[models.StatusPending])
}
