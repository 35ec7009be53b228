// Package results reads completed survey sessions and groups their responses
// into one export unit per participant submission.
package results

import (
	"context"
	"time"

	"go.uber.org/zap"

	models "github.com/CLDWare/csi-survey-backend/pkg/db"
)

// RowSource returns flat joined rows of completed sessions, newest completion
// first, then by user name and question order.
type RowSource interface {
	ListResultRows(ctx context.Context) ([]models.ResultRow, error)
	ListUserResultRows(ctx context.Context, userID uint) ([]models.ResultRow, error)
}

// Response is one answered question inside a GroupedResult.
type Response struct {
	QuestionText string  `json:"question_text"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment"`
}

// GroupedResult is one completed submission with its ordered responses.
type GroupedResult struct {
	UserName    string     `json:"user_name"`
	ProjectName string     `json:"project_name"`
	TotalScore  float64    `json:"total_score"`
	CompletedAt time.Time  `json:"completed_at"`
	Responses   []Response `json:"responses"`
}

type Aggregator struct {
	rows RowSource
	log  *zap.Logger
}

func NewAggregator(rows RowSource, log *zap.Logger) *Aggregator {
	return &Aggregator{rows: rows, log: log.Named("results")}
}

// FetchRows returns the flat rows before grouping.
func (a *Aggregator) FetchRows(ctx context.Context) ([]models.ResultRow, error) {
	return a.rows.ListResultRows(ctx)
}

// FetchGroupedResults returns every completed submission.
func (a *Aggregator) FetchGroupedResults(ctx context.Context) ([]GroupedResult, error) {
	rows, err := a.rows.ListResultRows(ctx)
	if err != nil {
		return nil, err
	}
	return a.group(rows), nil
}

// FetchUserResults returns the completed submissions of one user.
func (a *Aggregator) FetchUserResults(ctx context.Context, userID uint) ([]GroupedResult, error) {
	rows, err := a.rows.ListUserResultRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.group(rows), nil
}

func (a *Aggregator) group(rows []models.ResultRow) []GroupedResult {
	grouped, skipped := Group(rows)
	if skipped > 0 {
		a.log.Warn("Skipped result rows without session summary", zap.Int("skipped", skipped))
	}
	return grouped
}

type groupKey struct {
	userName    string
	projectName string
	completedAt string
}

// Group merges rows sharing (user name, project name, completion time) into
// one GroupedResult. Groups and their responses keep the order of rows.
// Rows missing the session's score or completion time are skipped and counted.
func Group(rows []models.ResultRow) ([]GroupedResult, int) {
	grouped := []GroupedResult{}
	index := map[groupKey]int{}
	skipped := 0

	for _, row := range rows {
		if row.TotalScore == nil || row.CompletedAt == nil {
			skipped++
			continue
		}

		key := groupKey{
			userName:    row.UserName,
			projectName: row.ProjectName,
			completedAt: row.CompletedAt.UTC().Format(time.RFC3339Nano),
		}
		i, ok := index[key]
		if !ok {
			i = len(grouped)
			index[key] = i
			grouped = append(grouped, GroupedResult{
				UserName:    row.UserName,
				ProjectName: row.ProjectName,
				TotalScore:  *row.TotalScore,
				CompletedAt: *row.CompletedAt,
				Responses:   []Response{},
			})
		}
		grouped[i].Responses = append(grouped[i].Responses, Response{
			QuestionText: row.QuestionText,
			Rating:       row.Rating,
			Comment:      row.Comment,
		})
	}
	return grouped, skipped
}
