package services

import (
	"context"
	"fmt"

	"github.com/localnerve/paperdb/internal/models"
	"gorm.io/hints"
)

// CitedPaper is a paper with its inbound citation count.
type CitedPaper struct {
	PaperID       uint64             `json:"paperId"`
	Title         string             `json:"title"`
	Status        models.PaperStatus `json:"status"`
	CitationCount int64              `json:"citationCount"`
}

// ActiveReviewer is a user with at least one completed review.
type ActiveReviewer struct {
	UserID           string `json:"userId"`
	DisplayName      string `json:"displayName"`
	Email            string `json:"email"`
	CompletedReviews int64  `json:"completedReviews"`
}

// MostCitedPapers lists every paper that has a current version with the
// number of papers citing it, most cited first, then by paper id.
func (e *Engine) MostCitedPapers(ctx context.Context) ([]CitedPaper, error) {
	rows := []CitedPaper{}
	if err := e.db.WithContext(ctx).
		Clauses(hints.Comment("select", "paperdb:most-cited")).
		Table("papers AS p").
		Select("p.paper_id, v.title, p.status, COUNT(c.citing_paper_id) AS citation_count").
		Joins(joinCurrentVersion).
		Joins("LEFT JOIN citations c ON c.cited_paper_id = p.paper_id").
		Group("p.paper_id, v.title, p.status").
		Order("citation_count DESC, p.paper_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count citations: %w", err)
	}
	return rows, nil
}

// ActiveReviewers lists users by number of completed reviews, highest first,
// then by user id. Users without a completed review are left out.
func (e *Engine) ActiveReviewers(ctx context.Context) ([]ActiveReviewer, error) {
	rows := []ActiveReviewer{}
	if err := e.db.WithContext(ctx).
		Clauses(hints.Comment("select", "paperdb:active-reviewers")).
		Table("users AS u").
		Select("u.user_id, u.display_name, u.email, COUNT(r.review_id) AS completed_reviews").
		Joins("JOIN reviews r ON r.reviewer_id = u.user_id AND r.status = ?", models.ReviewCompleted).
		Group("u.user_id, u.display_name, u.email").
		Order("completed_reviews DESC, u.user_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count completed reviews: %w", err)
	}
	return rows, nil
}
