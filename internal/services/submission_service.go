// Package services contains the business logic for submissions, moderator
// accounts, and photo storage.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gearreport/internal/models"
	"gearreport/internal/observability"
	contextutils "gearreport/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// SubmissionServiceInterface defines submission persistence operations.
type SubmissionServiceInterface interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	GetSubmissionsPaginated(ctx context.Context, page, pageSize int, status string) ([]models.Submission, int, error)
	GetApprovedSubmissions(ctx context.Context) ([]models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error)
	AdjustEquipmentCount(ctx context.Context, id string, entryIndex int, count *float64) (*models.Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error)
}

// SubmissionService implements SubmissionServiceInterface over PostgreSQL.
type SubmissionService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewSubmissionService creates a new SubmissionService instance.
func NewSubmissionService(db *sql.DB, logger *observability.Logger) *SubmissionService {
	if db == nil {
		panic("NewSubmissionService: db is nil")
	}
	if logger == nil {
		panic("NewSubmissionService: logger is nil")
	}
	return &SubmissionService{db: db, logger: logger}
}

const submissionColumns = "id, name, email, phone, location, latitude, longitude, message, images, equipment, status, created_at, approved_at"

// CreateSubmission inserts a new submission in the pending state.
func (s *SubmissionService) CreateSubmission(ctx context.Context, sub *models.Submission) (result0 *models.Submission, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "create_submission",
		observability.AttributeImageCount(len(sub.Images)))
	defer observability.FinishSpan(span, &err)

	imagesJSON, err := json.Marshal(sub.Images)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal images")
	}
	equipmentJSON, err := json.Marshal(sub.Equipment)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal equipment")
	}

	query := `INSERT INTO submissions (name, email, phone, location, latitude, longitude, message, images, equipment, status, created_at)
              VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id, created_at`
	now := time.Now()
	var id string
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, query,
		sub.Name, sub.Email, sub.Phone, sub.Location,
		sub.Latitude, sub.Longitude, sub.Message,
		imagesJSON, equipmentJSON, models.StatusPending, now).
		Scan(&id, &createdAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert submission")
	}
	sub.ID = id
	sub.Status = models.StatusPending
	sub.CreatedAt = createdAt
	return sub, nil
}

// GetSubmissionByID fetches a single submission.
func (s *SubmissionService) GetSubmissionByID(ctx context.Context, id string) (result0 *models.Submission, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "get_submission_by_id",
		observability.AttributeSubmissionID(id))
	defer observability.FinishSpan(span, &err)

	query := fmt.Sprintf("SELECT %s FROM submissions WHERE id=$1", submissionColumns)
	row := s.db.QueryRowContext(ctx, query, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to scan submission")
	}
	return sub, nil
}

// GetSubmissionsPaginated returns submissions newest first, optionally filtered by status.
func (s *SubmissionService) GetSubmissionsPaginated(ctx context.Context, page, pageSize int, status string) (result0 []models.Submission, result1 int, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "get_submissions_paginated",
		observability.AttributePage(page),
		observability.AttributePageSize(pageSize),
		observability.AttributeStatusFilter(status))
	defer observability.FinishSpan(span, &err)

	var conditions []string
	var args []interface{}
	idx := 1
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status=$%d", idx))
		args = append(args, status)
		idx++
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM submissions %s", where)
	var total int
	if err = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to count submissions")
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf("SELECT %s FROM submissions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		submissionColumns, where, idx, idx+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to query submission list")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Submission{}
	for rows.Next() {
		sub, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, 0, contextutils.WrapError(scanErr, "scan submission list")
		}
		list = append(list, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, contextutils.WrapError(err, "iterate submission list")
	}
	return list, total, nil
}

// GetApprovedSubmissions returns all approved submissions newest first.
// The gallery, map, and impact views all operate on this set.
func (s *SubmissionService) GetApprovedSubmissions(ctx context.Context) (result0 []models.Submission, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "get_approved_submissions")
	defer observability.FinishSpan(span, &err)

	query := fmt.Sprintf("SELECT %s FROM submissions WHERE status=$1 ORDER BY created_at DESC", submissionColumns)
	rows, err := s.db.QueryContext(ctx, query, models.StatusApproved)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query approved submissions")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Submission{}
	for rows.Next() {
		sub, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, contextutils.WrapError(scanErr, "scan approved submissions")
		}
		list = append(list, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "iterate approved submissions")
	}
	return list, nil
}

// UpdateSubmissionStatus moves a submission between moderation states.
// approved_at is stamped on approval and cleared on any other transition.
func (s *SubmissionService) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) (result0 *models.Submission, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "update_submission_status",
		observability.AttributeSubmissionID(id),
		observability.AttributeStatus(string(status)))
	defer observability.FinishSpan(span, &err)

	if !models.ValidStatus(status) {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid status: %s", status)
	}

	var approvedAt sql.NullTime
	if status == models.StatusApproved {
		approvedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	query := `UPDATE submissions SET status=$1, approved_at=$2 WHERE id=$3`
	result, err := s.db.ExecContext(ctx, query, status, approvedAt, id)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to update submission status")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "submission %s not found", id)
	}
	return s.GetSubmissionByID(ctx, id)
}

// AdjustEquipmentCount sets or clears the moderator override for one equipment
// entry. A nil count removes the override and restores the bucket estimate.
func (s *SubmissionService) AdjustEquipmentCount(ctx context.Context, id string, entryIndex int, count *float64) (result0 *models.Submission, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "adjust_equipment_count",
		observability.AttributeSubmissionID(id),
		attribute.Int("equipment.index", entryIndex))
	defer observability.FinishSpan(span, &err)

	sub, err := s.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entryIndex < 0 || entryIndex >= len(sub.Equipment) {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "equipment index %d out of range", entryIndex)
	}

	sub.Equipment[entryIndex].AdminAdjustedCount = count
	equipmentJSON, err := json.Marshal(sub.Equipment)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal equipment")
	}

	query := `UPDATE submissions SET equipment=$1 WHERE id=$2`
	if _, err := s.db.ExecContext(ctx, query, equipmentJSON, id); err != nil {
		return nil, contextutils.WrapError(err, "failed to update equipment")
	}
	return sub, nil
}

// DeleteSubmission deletes a single submission by ID.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, id string) (err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "delete_submission",
		observability.AttributeSubmissionID(id))
	defer observability.FinishSpan(span, &err)

	query := `DELETE FROM submissions WHERE id=$1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return contextutils.WrapError(err, "failed to delete submission")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}

	if rowsAffected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "submission %s not found", id)
	}

	return nil
}

// CountByStatus returns the number of submissions in each moderation state.
func (s *SubmissionService) CountByStatus(ctx context.Context) (result0 map[models.SubmissionStatus]int, err error) {
	ctx, span := observability.TraceSubmissionFunction(ctx, "count_by_status")
	defer observability.FinishSpan(span, &err)

	query := `SELECT status, COUNT(*) FROM submissions GROUP BY status`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to count submissions by status")
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := map[models.SubmissionStatus]int{}
	for rows.Next() {
		var status models.SubmissionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, contextutils.WrapError(err, "scan status count")
		}
		counts[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "iterate status counts")
	}
	return counts, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var imagesJSON, equipmentJSON []byte
	err := row.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.Location,
		&sub.Latitude, &sub.Longitude, &sub.Message,
		&imagesJSON, &equipmentJSON, &sub.Status, &sub.CreatedAt, &sub.ApprovedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(imagesJSON, &sub.Images); err != nil {
		return nil, contextutils.WrapError(err, "failed to unmarshal images")
	}
	if err := json.Unmarshal(equipmentJSON, &sub.Equipment); err != nil {
		return nil, contextutils.WrapError(err, "failed to unmarshal equipment")
	}
	return &sub, nil
}
