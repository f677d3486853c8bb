package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/types"
	"gorm.io/gorm"
)

// MaxTagLength matches the tags.name column.
const MaxTagLength = 128

// PaperDetail is a paper with its current version and tags.
type PaperDetail struct {
	models.Paper
	Current *models.PaperVersion `json:"current,omitempty"`
	Tags    []string             `json:"tags"`
}

// CreatePaper opens a new DRAFT paper with authorID as its corresponding author.
func (e *Engine) CreatePaper(ctx context.Context, authorID string) (*models.Paper, error) {
	var paper models.Paper

	err := e.transaction(ctx, cmdCreatePaper, func(tx *gorm.DB) error {
		if err := requireRole(ctx, NewDirectory(tx), authorID, models.RoleAuthor, "author lacks AUTHOR"); err != nil {
			return err
		}

		now := e.now()
		paper = models.Paper{
			Status:                models.StatusDraft,
			CorrespondingAuthorID: authorID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := tx.Create(&paper).Error; err != nil {
			return fmt.Errorf("insert paper: %w", err)
		}

		return newAuditRecorder(tx, now).record(models.Paper{}.TableName(), recordKey(paper.PaperID),
			models.ActionInsert, nil, paper, actor(authorID))
	})
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// GetPaper returns a paper with its current version, if any, and its tag names.
func (e *Engine) GetPaper(ctx context.Context, paperID uint64) (*PaperDetail, error) {
	db := e.db.WithContext(ctx)

	var detail PaperDetail
	if err := db.Where("paper_id = ?", paperID).First(&detail.Paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("paper %d not found", paperID)
		}
		return nil, fmt.Errorf("load paper %d: %w", paperID, err)
	}

	if detail.CurrentVersion > 0 {
		var current models.PaperVersion
		if err := db.Where("paper_id = ? AND version_number = ?", paperID, detail.CurrentVersion).
			First(&current).Error; err != nil {
			return nil, fmt.Errorf("load current version of paper %d: %w", paperID, err)
		}
		detail.Current = &current
	}

	detail.Tags = []string{}
	if err := db.Table("tags AS t").
		Joins("JOIN paper_tags pt ON pt.tag_id = t.tag_id").
		Where("pt.paper_id = ?", paperID).
		Order("t.name ASC").
		Pluck("t.name", &detail.Tags).Error; err != nil {
		return nil, fmt.Errorf("load tags of paper %d: %w", paperID, err)
	}

	return &detail, nil
}

// ListVersions returns the version history of a paper, oldest first.
func (e *Engine) ListVersions(ctx context.Context, paperID uint64) ([]models.PaperVersion, error) {
	db := e.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Paper{}).Where("paper_id = ?", paperID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("look up paper %d: %w", paperID, err)
	}
	if count == 0 {
		return nil, types.NotFound("paper %d not found", paperID)
	}

	versions := []models.PaperVersion{}
	if err := db.Where("paper_id = ?", paperID).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("list versions of paper %d: %w", paperID, err)
	}
	return versions, nil
}

// DeletePaper removes a paper with its versions, their reviews, its citations
// in both directions and its tag associations. Audit history is kept.
func (e *Engine) DeletePaper(ctx context.Context, paperID uint64, actorID string) error {
	err := e.transaction(ctx, cmdDeletePaper, func(tx *gorm.DB) error {
		if err := requireRole(ctx, NewDirectory(tx), actorID, models.RoleAdmin, "actor lacks ADMIN"); err != nil {
			return err
		}

		paper, err := lockPaper(tx, paperID)
		if err != nil {
			return err
		}

		var reviews []models.Review
		if err := tx.Where("paper_id = ?", paperID).Order("review_id ASC").Find(&reviews).Error; err != nil {
			return fmt.Errorf("load reviews of paper %d: %w", paperID, err)
		}
		var versions []models.PaperVersion
		if err := tx.Where("paper_id = ?", paperID).Order("version_number ASC").Find(&versions).Error; err != nil {
			return fmt.Errorf("load versions of paper %d: %w", paperID, err)
		}

		// Children first, so RESTRICT and missing ON DELETE support never block the delete
		steps := []struct {
			what  string
			model interface{}
			where string
			args  []interface{}
		}{
			{"reviews", &models.Review{}, "paper_id = ?", []interface{}{paperID}},
			{"citations", &models.Citation{}, "citing_paper_id = ? OR cited_paper_id = ?", []interface{}{paperID, paperID}},
			{"tags", &models.PaperTag{}, "paper_id = ?", []interface{}{paperID}},
			{"versions", &models.PaperVersion{}, "paper_id = ?", []interface{}{paperID}},
			{"paper", &models.Paper{}, "paper_id = ?", []interface{}{paperID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete %s of paper %d: %w", step.what, paperID, err)
			}
		}

		audit := newAuditRecorder(tx, e.now())
		for _, r := range reviews {
			if err := audit.record(models.Review{}.TableName(), recordKey(r.ReviewID),
				models.ActionDelete, r, nil, actor(actorID)); err != nil {
				return err
			}
		}
		for _, v := range versions {
			if err := audit.record(models.PaperVersion{}.TableName(), recordKey(v.PaperID, v.VersionNumber),
				models.ActionDelete, v, nil, actor(actorID)); err != nil {
				return err
			}
		}
		return audit.record(models.Paper{}.TableName(), recordKey(paperID),
			models.ActionDelete, paper, nil, actor(actorID))
	})
	if err != nil {
		return err
	}

	e.invalidateSearch(ctx)
	return nil
}

// paperExists reports a NotFound error for a missing paper.
func paperExists(tx *gorm.DB, paperID uint64) error {
	var count int64
	if err := tx.Model(&models.Paper{}).Where("paper_id = ?", paperID).Count(&count).Error; err != nil {
		return fmt.Errorf("look up paper %d: %w", paperID, err)
	}
	if count == 0 {
		return types.NotFound("paper %d not found", paperID)
	}
	return nil
}

// AddCitation records that citingID cites citedID.
func (e *Engine) AddCitation(ctx context.Context, citingID, citedID uint64, actorID string) (*models.Citation, error) {
	var citation models.Citation

	err := e.transaction(ctx, cmdAddCitation, func(tx *gorm.DB) error {
		if err := requireAnyRole(ctx, NewDirectory(tx), actorID,
			[]models.Role{models.RoleAuthor, models.RoleAdmin}, "actor lacks AUTHOR or ADMIN"); err != nil {
			return err
		}
		if e.policy.ForbidSelfCitation && citingID == citedID {
			return types.Validation("paper %d cannot cite itself", citingID)
		}
		if err := paperExists(tx, citingID); err != nil {
			return err
		}
		if err := paperExists(tx, citedID); err != nil {
			return err
		}

		now := e.now()
		citation = models.Citation{
			CitingPaperID: citingID,
			CitedPaperID:  citedID,
			CreatedAt:     now,
		}
		if err := tx.Create(&citation).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict(err, "paper %d already cites paper %d", citingID, citedID)
			}
			return fmt.Errorf("insert citation: %w", err)
		}

		return newAuditRecorder(tx, now).record(models.Citation{}.TableName(), recordKey(citingID, citedID),
			models.ActionInsert, nil, citation, actor(actorID))
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSearch(ctx)
	return &citation, nil
}

// normalizeTag trims a tag name and checks it fits the column.
func normalizeTag(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", types.Validation("tag name is required")
	}
	if len(name) > MaxTagLength {
		return "", types.Validation("tag name exceeds %d bytes", MaxTagLength)
	}
	return name, nil
}

// TagPaper attaches a tag to a paper, creating the tag on first use.
// Attaching a tag the paper already carries changes nothing.
func (e *Engine) TagPaper(ctx context.Context, paperID uint64, name, actorID string) (*models.Tag, error) {
	var tag models.Tag

	err := e.transaction(ctx, cmdTagPaper, func(tx *gorm.DB) error {
		if err := requireAnyRole(ctx, NewDirectory(tx), actorID,
			[]models.Role{models.RoleAuthor, models.RoleAdmin}, "actor lacks AUTHOR or ADMIN"); err != nil {
			return err
		}
		name, err := normalizeTag(name)
		if err != nil {
			return err
		}
		if err := paperExists(tx, paperID); err != nil {
			return err
		}

		audit := newAuditRecorder(tx, e.now())

		if err := tx.Where("name = ?", name).Limit(1).Find(&tag).Error; err != nil {
			return fmt.Errorf("load tag %q: %w", name, err)
		}
		if tag.TagID == 0 {
			tag = models.Tag{Name: name}
			if err := tx.Create(&tag).Error; err != nil {
				if isDuplicateKey(err) {
					return types.Conflict(err, "tag %q was created concurrently", name)
				}
				return fmt.Errorf("create tag %q: %w", name, err)
			}
			if err := audit.record(models.Tag{}.TableName(), recordKey(tag.TagID),
				models.ActionInsert, nil, tag, actor(actorID)); err != nil {
				return err
			}
		}

		var attached int64
		if err := tx.Model(&models.PaperTag{}).
			Where("paper_id = ? AND tag_id = ?", paperID, tag.TagID).
			Count(&attached).Error; err != nil {
			return fmt.Errorf("look up tags of paper %d: %w", paperID, err)
		}
		if attached > 0 {
			return nil
		}

		link := models.PaperTag{PaperID: paperID, TagID: tag.TagID}
		if err := tx.Create(&link).Error; err != nil {
			if isDuplicateKey(err) {
				return types.Conflict(err, "paper %d was tagged %q concurrently", paperID, name)
			}
			return fmt.Errorf("tag paper %d: %w", paperID, err)
		}
		return audit.record(models.PaperTag{}.TableName(), recordKey(paperID, tag.TagID),
			models.ActionInsert, nil, link, actor(actorID))
	})
	if err != nil {
		return nil, err
	}

	e.invalidateSearch(ctx)
	return &tag, nil
}

// UntagPaper detaches a tag from a paper. The tag itself is kept.
func (e *Engine) UntagPaper(ctx context.Context, paperID uint64, name, actorID string) error {
	err := e.transaction(ctx, cmdUntagPaper, func(tx *gorm.DB) error {
		if err := requireAnyRole(ctx, NewDirectory(tx), actorID,
			[]models.Role{models.RoleAuthor, models.RoleAdmin}, "actor lacks AUTHOR or ADMIN"); err != nil {
			return err
		}
		name, err := normalizeTag(name)
		if err != nil {
			return err
		}

		var tag models.Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("tag %q not found", name)
			}
			return fmt.Errorf("load tag %q: %w", name, err)
		}

		link := models.PaperTag{PaperID: paperID, TagID: tag.TagID}
		result := tx.Where("paper_id = ? AND tag_id = ?", paperID, tag.TagID).Delete(&models.PaperTag{})
		if result.Error != nil {
			return fmt.Errorf("untag paper %d: %w", paperID, result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NotFound("paper %d is not tagged %q", paperID, name)
		}

		return newAuditRecorder(tx, e.now()).record(models.PaperTag{}.TableName(), recordKey(paperID, tag.TagID),
			models.ActionDelete, link, nil, actor(actorID))
	})
	if err != nil {
		return err
	}

	e.invalidateSearch(ctx)
	return nil
}

// BulkImportPapers creates one SUBMITTED paper without versions per author id,
// in input order. Duplicate ids yield separate papers. It is a system
// operation: no role is checked and the audit entries carry no actor.
func (e *Engine) BulkImportPapers(ctx context.Context, authorIDs []string) ([]models.Paper, error) {
	papers := make([]models.Paper, 0, len(authorIDs))
	if len(authorIDs) == 0 {
		return papers, nil
	}

	err := e.transaction(ctx, cmdBulkImportPapers, func(tx *gorm.DB) error {
		dir := NewDirectory(tx)
		known := make(map[string]bool, len(authorIDs))
		for _, id := range authorIDs {
			if _, checked := known[id]; checked {
				continue
			}
			exists, err := dir.UserExists(ctx, id)
			if err != nil {
				return err
			}
			if !exists {
				return types.NotFound("author %s not found", id)
			}
			known[id] = true
		}

		now := e.now()
		papers = papers[:0]
		for _, id := range authorIDs {
			papers = append(papers, models.Paper{
				Status:                models.StatusSubmitted,
				CorrespondingAuthorID: id,
				CreatedAt:             now,
				UpdatedAt:             now,
			})
		}
		// One row per statement keeps generated ids in input order on every dialect
		for i := range papers {
			if err := tx.Create(&papers[i]).Error; err != nil {
				return fmt.Errorf("insert paper %d of %d: %w", i+1, len(papers), err)
			}
		}

		audit := newAuditRecorder(tx, now)
		for _, p := range papers {
			if err := audit.record(models.Paper{}.TableName(), recordKey(p.PaperID),
				models.ActionInsert, nil, p, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return papers, nil
}
