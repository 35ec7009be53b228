package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DefaultQuestions is the questionnaire about the project's systems analyst,
// stored with order numbers 1..n.
var DefaultQuestions = []string{
	"How well does the systems analyst help the team avoid misunderstandings and mistakes while building features?",
	"How convenient is it for you to work with the systems analyst on your project?",
	"In your opinion, how much does the systems analyst contribute to effective teamwork?",
	"In your opinion, how clearly and completely does the systems analyst formulate requirements?",
	"In your opinion, how effectively does the systems analyst pass requirements between roles (developers, testers, managers)?",
	"In your opinion, how open is the systems analyst to discussing and clarifying requirements?",
	"How deeply does the systems analyst understand the specifics of the project and its business goals?",
	"How quickly does the systems analyst react to changes in the project?",
	"How well is the project documentation prepared (feature descriptions, business logic, specifications, etc.)?",
	"How much does the systems analyst's work contribute to delivering the project on time?",
	"In your opinion, how involved is the systems analyst in the project?",
	"How much does the systems analyst's work reduce uncertainty and risk in the project?",
	"Overall, how would you rate how systems analysis is carried out on the project?",
}

var demoProjects = []Project{
	{Name: "Project A", Description: ptr("CRM system")},
	{Name: "Project B", Description: ptr("Mobile application")},
	{Name: "Project C", Description: ptr("Web portal")},
	{Name: "Project D", Description: ptr("API service")},
	{Name: "Project E", Description: ptr("Analytics platform")},
}

var demoUsers = []User{
	{Name: "Administrator", Email: "admin@example.com", IsAdmin: true},
	{Name: "Ivan Ivanov", Email: "ivanov@example.com"},
	{Name: "Petr Petrov", Email: "petrov@example.com"},
	{Name: "Sidor Sidorov", Email: "sidorov@example.com"},
	{Name: "Anna Volkova", Email: "volkova@example.com"},
	{Name: "Maria Belova", Email: "belova@example.com"},
	{Name: "Oleg Chernov", Email: "chernov@example.com"},
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Questions   int
	Projects    int
	Users       int
	Assignments int
}

// Seed fills an empty database with the question catalog and demo data.
// Each table is only touched when it has no rows.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var result SeedResult

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if empty, err := isEmpty(tx, &Question{}); err != nil {
			return err
		} else if empty {
			for i, text := range DefaultQuestions {
				question := Question{Text: text, OrderNum: i + 1, IsActive: true}
				if err := gorm.G[Question](tx).Create(ctx, &question); err != nil {
					return fmt.Errorf("seed question %d: %w", i+1, err)
				}
				result.Questions++
			}
		}

		projects := []Project{}
		if empty, err := isEmpty(tx, &Project{}); err != nil {
			return err
		} else if empty {
			for _, p := range demoProjects {
				project := p
				if err := gorm.G[Project](tx).Create(ctx, &project); err != nil {
					return fmt.Errorf("seed project %s: %w", p.Name, err)
				}
				projects = append(projects, project)
				result.Projects++
			}
		}

		users := []User{}
		if empty, err := isEmpty(tx, &User{}); err != nil {
			return err
		} else if empty {
			for _, u := range demoUsers {
				user := u
				if err := gorm.G[User](tx).Create(ctx, &user); err != nil {
					return fmt.Errorf("seed user %s: %w", u.Email, err)
				}
				users = append(users, user)
				result.Users++
			}
		}

		// round robin assignment, the admin gets the first two projects
		if len(users) > 0 && len(projects) > 0 {
			assignments := []UserProject{
				{UserID: users[0].ID, ProjectID: projects[0].ID},
			}
			if len(projects) > 1 {
				assignments = append(assignments, UserProject{UserID: users[0].ID, ProjectID: projects[1].ID})
			}
			for i, user := range users[1:] {
				assignments = append(assignments, UserProject{UserID: user.ID, ProjectID: projects[i%len(projects)].ID})
			}
			for _, a := range assignments {
				assignment := a
				if err := gorm.G[UserProject](tx).Create(ctx, &assignment); err != nil {
					return fmt.Errorf("seed assignment: %w", err)
				}
				result.Assignments++
			}
		}
		return nil
	})
	return result, err
}

func isEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func ptr[T any](v T) *T {
	return &v
}
