package models

import "time"

// PaperStatus is the lifecycle state of a paper.
type PaperStatus string

const (
	StatusDraft             PaperStatus = "DRAFT"
	StatusSubmitted         PaperStatus = "SUBMITTED"
	StatusUnderReview       PaperStatus = "UNDER_REVIEW"
	StatusRevisionRequested PaperStatus = "REVISION_REQUESTED"
	StatusAccepted          PaperStatus = "ACCEPTED"
	StatusRejected          PaperStatus = "REJECTED"
)

// Terminal reports whether the status ends the review cycle.
func (s PaperStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Paper is the identity of a submission across all of its revisions.
// CurrentVersion is 0 until the first version is submitted.
type Paper struct {
	PaperID               uint64         `gorm:"primaryKey;autoIncrement" json:"paperId"`
	CurrentVersion        uint64         `gorm:"not null;default:0" json:"currentVersion"`
	Status                PaperStatus    `gorm:"size:32;not null;default:'DRAFT';index" json:"status"`
	CorrespondingAuthorID string         `gorm:"size:36;not null;index" json:"correspondingAuthorId"`
	CorrespondingAuthor   *User          `gorm:"foreignKey:CorrespondingAuthorID;references:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	Versions              []PaperVersion `gorm:"foreignKey:PaperID;references:PaperID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// PaperVersion is one immutable snapshot of a paper. A resubmission always
// inserts a new row; existing rows are never edited.
type PaperVersion struct {
	PaperID       uint64    `gorm:"primaryKey;autoIncrement:false" json:"paperId"`
	VersionNumber uint64    `gorm:"primaryKey;autoIncrement:false" json:"versionNumber"`
	Title         string    `gorm:"size:512;not null" json:"title"`
	Abstract      string    `gorm:"type:text" json:"abstract"`
	SubmittedAt   time.Time `gorm:"not null" json:"submittedAt"`
	FileRef       string    `gorm:"size:1024;not null" json:"fileRef"`
	SubmitterID   string    `gorm:"size:36;not null;index" json:"submitterId"`
	Submitter     *User     `gorm:"foreignKey:SubmitterID;references:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName overrides the table name for Paper
func (Paper) TableName() string {
	return "papers"
}

// TableName overrides the table name for PaperVersion
func (PaperVersion) TableName() string {
	return "paper_versions"
}

// Citation is a directed edge of the citation graph.
type Citation struct {
	CitingPaperID uint64    `gorm:"primaryKey;autoIncrement:false" json:"citingPaperId"`
	CitedPaperID  uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"citedPaperId"`
	CreatedAt     time.Time `json:"createdAt"`
	CitingPaper   *Paper    `gorm:"foreignKey:CitingPaperID;references:PaperID;constraint:OnDelete:CASCADE" json:"-"`
	CitedPaper    *Paper    `gorm:"foreignKey:CitedPaperID;references:PaperID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for Citation
func (Citation) TableName() string {
	return "citations"
}

// Tag is a controlled vocabulary term.
type Tag struct {
	TagID uint64 `gorm:"primaryKey;autoIncrement" json:"tagId"`
	Name  string `gorm:"size:128;not null;uniqueIndex" json:"name"`
}

// PaperTag attaches a tag to a paper as a whole, not to one version.
type PaperTag struct {
	PaperID uint64 `gorm:"primaryKey;autoIncrement:false" json:"paperId"`
	TagID   uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"tagId"`
	Paper   *Paper `gorm:"foreignKey:PaperID;references:PaperID;constraint:OnDelete:CASCADE" json:"-"`
	Tag     *Tag   `gorm:"foreignKey:TagID;references:TagID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for PaperTag
func (PaperTag) TableName() string {
	return "paper_tags"
}
