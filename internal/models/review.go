package models

import "time"

// ReviewStatus is the lifecycle state of a review.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "PENDING"
	ReviewCompleted ReviewStatus = "COMPLETED"
)

// Review is pinned to one paper version. It is never migrated when the paper
// moves on to a newer version.
type Review struct {
	ReviewID      uint64        `gorm:"primaryKey;autoIncrement" json:"reviewId"`
	PaperID       uint64        `gorm:"not null;index:idx_review_version" json:"paperId"`
	VersionNumber uint64        `gorm:"not null;index:idx_review_version" json:"versionNumber"`
	ReviewerID    string        `gorm:"size:36;not null;index" json:"reviewerId"`
	Comments      *string       `gorm:"type:text" json:"comments,omitempty"`
	Score         *int          `json:"score,omitempty"`
	Status        ReviewStatus  `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Version       *PaperVersion `gorm:"foreignKey:PaperID,VersionNumber;references:PaperID,VersionNumber;constraint:OnDelete:CASCADE" json:"-"`
	Reviewer      *User         `gorm:"foreignKey:ReviewerID;references:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "reviews"
}
