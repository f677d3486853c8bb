package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Score bounds for a review outcome.
const (
	MinScore = 1
	MaxScore = 5
)

// lockPaper reads a paper and holds its row lock until the transaction ends.
// SQL Server has no FOR UPDATE; there the version primary key and the guarded
// update still reject a lost race.
func lockPaper(tx *gorm.DB, paperID uint64) (*models.Paper, error) {
	query := tx
	if tx.Dialector.Name() != "sqlserver" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var paper models.Paper
	if err := query.Where("paper_id = ?", paperID).First(&paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("paper %d not found", paperID)
		}
		return nil, fmt.Errorf("load paper %d: %w", paperID, err)
	}
	return &paper, nil
}

// nextStatus is the status a paper takes when a new version is submitted.
// Only a DRAFT becomes SUBMITTED; every other status, terminal ones included,
// becomes REVISION_REQUESTED.
func nextStatus(previous models.PaperStatus) models.PaperStatus {
	if previous == models.StatusDraft {
		return models.StatusSubmitted
	}
	return models.StatusRevisionRequested
}

// SubmitPaperVersion appends the next version of a paper and moves the paper
// to it. A submission that loses the race for the next version number fails
// with a conflict and may be retried as a whole.
func (e *Engine) SubmitPaperVersion(ctx context.Context, paperID uint64, title, abstract, fileRef, submitterID string) (*models.PaperVersion, error) {
	var created models.PaperVersion

	err := e.transaction(ctx, cmdSubmitPaperVersion, func(tx *gorm.DB) error {
		if err := requireRole(ctx, NewDirectory(tx), submitterID, models.RoleAuthor, "submitter lacks AUTHOR"); err != nil {
			return err
		}

		paper, err := lockPaper(tx, paperID)
		if err != nil {
			return err
		}

		if strings.TrimSpace(title) == "" {
			return types.Validation("title is required")
		}
		if strings.TrimSpace(fileRef) == "" {
			return types.Validation("file reference is required")
		}
		if e.policy.StrictStatusTransitions && paper.Status.Terminal() {
			return types.InvalidState("paper %d is %s and accepts no new versions", paperID, paper.Status)
		}

		var maxVersion uint64
		if err := tx.Model(&models.PaperVersion{}).
			Where("paper_id = ?", paperID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxVersion).Error; err != nil {
			return fmt.Errorf("read latest version of paper %d: %w", paperID, err)
		}

		now := e.now()
		created = models.PaperVersion{
			PaperID:       paperID,
			VersionNumber: maxVersion + 1,
			Title:         title,
			Abstract:      abstract,
			SubmittedAt:   now,
			FileRef:       fileRef,
			SubmitterID:   submitterID,
		}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict(err, "version %d of paper %d was taken by a concurrent submission", created.VersionNumber, paperID)
			}
			return fmt.Errorf("insert version %d of paper %d: %w", created.VersionNumber, paperID, err)
		}

		updated := *paper
		updated.CurrentVersion = created.VersionNumber
		updated.Status = nextStatus(paper.Status)
		updated.UpdatedAt = now

		result := tx.Model(&models.Paper{}).
			Where("paper_id = ? AND current_version = ?", paperID, paper.CurrentVersion).
			Updates(map[string]interface{}{
				"current_version": updated.CurrentVersion,
				"status":          updated.Status,
				"updated_at":      now,
			})
		if result.Error != nil {
			return fmt.Errorf("update paper %d: %w", paperID, result.Error)
		}
		if result.RowsAffected == 0 {
			return types.Conflict(nil, "paper %d moved past version %d concurrently", paperID, paper.CurrentVersion)
		}

		audit := newAuditRecorder(tx, now)
		if err := audit.record(models.PaperVersion{}.TableName(), recordKey(paperID, created.VersionNumber),
			models.ActionInsert, nil, created, actor(submitterID)); err != nil {
			return err
		}
		return audit.record(models.Paper{}.TableName(), recordKey(paperID),
			models.ActionUpdate, paper, updated, actor(submitterID))
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSearch(ctx)
	return &created, nil
}

// AssignReviewer creates a pending review of one paper version.
func (e *Engine) AssignReviewer(ctx context.Context, paperID, versionNumber uint64, reviewerID, assignerID string) (*models.Review, error) {
	var (
		review   models.Review
		version  models.PaperVersion
		reviewer models.User
	)

	err := e.transaction(ctx, cmdAssignReviewer, func(tx *gorm.DB) error {
		dir := NewDirectory(tx)
		if err := requireRole(ctx, dir, assignerID, models.RoleAdmin, "assigner lacks ADMIN"); err != nil {
			return err
		}
		if err := requireRole(ctx, dir, reviewerID, models.RoleReviewer, "assignee lacks REVIEWER"); err != nil {
			return err
		}

		paper, err := lockPaper(tx, paperID)
		if err != nil {
			return err
		}

		if err := tx.Where("paper_id = ? AND version_number = ?", paperID, versionNumber).
			First(&version).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("version %d of paper %d not found", versionNumber, paperID)
			}
			return fmt.Errorf("load version %d of paper %d: %w", versionNumber, paperID, err)
		}

		if e.policy.UniqueReviewAssignments {
			var pending int64
			if err := tx.Model(&models.Review{}).
				Where("paper_id = ? AND version_number = ? AND reviewer_id = ? AND status = ?",
					paperID, versionNumber, reviewerID, models.ReviewPending).
				Count(&pending).Error; err != nil {
				return fmt.Errorf("count pending reviews: %w", err)
			}
			if pending > 0 {
				return types.Conflict(nil, "reviewer %s already has a pending review of version %d of paper %d",
					reviewerID, versionNumber, paperID)
			}
		}

		if err := tx.Where("user_id = ?", reviewerID).First(&reviewer).Error; err != nil {
			return fmt.Errorf("load reviewer %s: %w", reviewerID, err)
		}

		now := e.now()
		review = models.Review{
			PaperID:       paperID,
			VersionNumber: versionNumber,
			ReviewerID:    reviewerID,
			Status:        models.ReviewPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		audit := newAuditRecorder(tx, now)
		if err := audit.record(models.Review{}.TableName(), recordKey(review.ReviewID),
			models.ActionInsert, nil, review, actor(assignerID)); err != nil {
			return err
		}

		if !e.policy.UnderReviewOnAssignment || paper.CurrentVersion != versionNumber {
			return nil
		}
		if paper.Status != models.StatusSubmitted && paper.Status != models.StatusRevisionRequested {
			return nil
		}

		updated := *paper
		updated.Status = models.StatusUnderReview
		updated.UpdatedAt = now
		result := tx.Model(&models.Paper{}).
			Where("paper_id = ? AND current_version = ? AND status = ?", paperID, paper.CurrentVersion, paper.Status).
			Updates(map[string]interface{}{
				"status":     updated.Status,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("update paper %d: %w", paperID, result.Error)
		}
		if result.RowsAffected == 0 {
			return types.Conflict(nil, "paper %d changed concurrently", paperID)
		}
		return audit.record(models.Paper{}.TableName(), recordKey(paperID),
			models.ActionUpdate, paper, updated, actor(assignerID))
	})
	if err != nil {
		return nil, err
	}

	if err := e.notifier.ReviewerAssigned(ctx, Assignment{
		ReviewID:      review.ReviewID,
		PaperID:       paperID,
		VersionNumber: versionNumber,
		Title:         version.Title,
		ReviewerEmail: reviewer.Email,
		ReviewerName:  reviewer.DisplayName,
	}); err != nil {
		e.logger.Warn("reviewer notification failed",
			zap.Uint64("review_id", review.ReviewID),
			zap.String("reviewer_id", reviewerID),
			zap.Error(err),
		)
	}
	e.invalidateSearch(ctx)
	return &review, nil
}

// RecordReviewOutcome completes a pending review. The actor must be the
// assigned reviewer or an ADMIN; the reviewer's role is not re-checked, so a
// revoked role does not void an earlier assignment.
func (e *Engine) RecordReviewOutcome(ctx context.Context, reviewID uint64, comments *string, score *int, actorID string) (*models.Review, error) {
	if score != nil && (*score < MinScore || *score > MaxScore) {
		return nil, types.Validation("score %d is outside %d..%d", *score, MinScore, MaxScore)
	}

	var updated models.Review

	err := e.transaction(ctx, cmdRecordReviewOutcome, func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() != "sqlserver" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var review models.Review
		if err := query.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("review %d not found", reviewID)
			}
			return fmt.Errorf("load review %d: %w", reviewID, err)
		}

		if actorID != review.ReviewerID {
			if err := requireRole(ctx, NewDirectory(tx), actorID, models.RoleAdmin,
				"actor is neither the assigned reviewer nor an ADMIN"); err != nil {
				return err
			}
		}

		if review.Status == models.ReviewCompleted {
			return types.InvalidState("review %d is already completed", reviewID)
		}

		now := e.now()
		updated = review
		updated.Comments = comments
		updated.Score = score
		updated.Status = models.ReviewCompleted
		updated.UpdatedAt = now

		result := tx.Model(&models.Review{}).
			Where("review_id = ? AND status = ?", reviewID, models.ReviewPending).
			Updates(map[string]interface{}{
				"comments":   comments,
				"score":      score,
				"status":     updated.Status,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("update review %d: %w", reviewID, result.Error)
		}
		if result.RowsAffected == 0 {
			return types.Conflict(nil, "review %d was completed concurrently", reviewID)
		}

		return newAuditRecorder(tx, now).record(models.Review{}.TableName(), recordKey(reviewID),
			models.ActionUpdate, review, updated, actor(actorID))
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSearch(ctx)
	return &updated, nil
}
