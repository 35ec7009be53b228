package db

import (
	"time"
)

// Columns are owned by the versioned migrations in migrations/, gorm only maps them.

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"unique" json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserProject assigns a user to a project they may survey against
type UserProject struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_project"`
	User      User      `gorm:"foreignKey:UserID;references:ID"`
	ProjectID uint      `gorm:"uniqueIndex:idx_user_project"`
	Project   Project   `gorm:"foreignKey:ProjectID;references:ID"`
	CreatedAt time.Time
}

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `json:"text"`
	OrderNum  int       `gorm:"unique" json:"order"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SurveySession is open while CompletedAt and TotalScore are nil and completed
// once both are set.
type SurveySession struct {
	ID          uint    `gorm:"primaryKey"`
	UserID      uint
	User        User    `gorm:"foreignKey:UserID;references:ID"`
	ProjectID   uint
	Project     Project `gorm:"foreignKey:ProjectID;references:ID"`
	TotalScore  *float64
	CompletedAt *time.Time
	CreatedAt   time.Time
}

func (s SurveySession) Completed() bool {
	return s.CompletedAt != nil && s.TotalScore != nil
}

type SurveyResponse struct {
	ID         uint          `gorm:"primaryKey"`
	SessionID  uint          `gorm:"uniqueIndex:idx_session_question"`
	Session    SurveySession `gorm:"foreignKey:SessionID;references:ID"`
	QuestionID uint          `gorm:"uniqueIndex:idx_session_question"`
	Question   Question      `gorm:"foreignKey:QuestionID;references:ID"`
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}

// ResultRow is one flat joined row of a completed session's response.
type ResultRow struct {
	SessionID     uint       `json:"session_id"`
	UserName      string     `json:"user_name"`
	ProjectName   string     `json:"project_name"`
	QuestionText  string     `json:"question_text"`
	QuestionOrder int        `json:"question_order"`
	Rating        int        `json:"rating"`
	Comment       *string    `json:"comment"`
	TotalScore    *float64   `json:"total_score"`
	CompletedAt   *time.Time `json:"completed_at"`
}
