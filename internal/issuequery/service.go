// Package issuequery is the read side of the issue collection:
// filtered, paginated and searched views, never mutation.
package issuequery

import (
	"errors"
	"strings"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/models"

	"gorm.io/gorm"
)

const DefaultPageSize = 5

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Filter selects issues; zero values mean "no constraint".
type Filter struct {
	ProjectID uint
	Status    models.Status
	Priority  models.Priority
	Title     string // case-insensitive substring match
}

type Page struct {
	Items []models.Issue `json:"issues"`
	Total int64          `json:"total"`
	Pages int            `json:"pages"`
	Page  int            `json:"page"`
}

// List returns one page of matching issues, newest-created first, with
// assignees, assigner and project resolved for the response.
func (s *Service) List(f Filter, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := s.db.Model(&models.Issue{})
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not count issues", err)
	}

	var items []models.Issue
	err := q.
		Preload("Assignees").
		Preload("Assigner").
		Preload("Project").
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not load issues", err)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &Page{Items: items, Total: total, Pages: pages, Page: page}, nil
}

const (
	notAssigned      = "Not Assigned"
	missingAssigner  = "—"
	summarySeparator = " / "
)

// IssueSummary flattens an issue into the overview shape: one
// human-readable line combining who is assigned and which project.
type IssueSummary struct {
	models.Issue
	Summary      string `json:"summary"`
	AssignerName string `json:"assigner_name"`
}

// WithEmployeeSummary returns every issue, unpaginated, for overview
// displays.
func (s *Service) WithEmployeeSummary() ([]IssueSummary, error) {
	var issues []models.Issue
	err := s.db.
		Preload("Assignees").
		Preload("Assigner").
		Preload("Project").
		Order("created_at desc").
		Find(&issues).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not load issues", err)
	}

	summaries := make([]IssueSummary, 0, len(issues))
	for _, issue := range issues {
		names := notAssigned
		if len(issue.Assignees) > 0 {
			parts := make([]string, 0, len(issue.Assignees))
			for _, a := range issue.Assignees {
				parts = append(parts, a.Name)
			}
			names = strings.Join(parts, ", ")
		}

		assigner := missingAssigner
		if issue.Assigner != nil {
			assigner = issue.Assigner.Name
		}

		summaries = append(summaries, IssueSummary{
			Issue:        issue,
			Summary:      names + summarySeparator + issue.Project.Name,
			AssignerName: assigner,
		})
	}
	return summaries, nil
}

// ByProject returns every issue of one project, newest first.
func (s *Service) ByProject(projectID uint) ([]models.Issue, error) {
	var issues []models.Issue
	err := s.db.
		Preload("Assignees").
		Preload("Assigner").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&issues).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not load issues", err)
	}
	return issues, nil
}

// Get returns one fully resolved issue.
func (s *Service) Get(issueID uint) (*models.Issue, error) {
	var issue models.Issue
	err := s.db.
		Preload("Assignees").
		Preload("Assigner").
		Preload("Project").
		Preload("Comments").
		First(&issue, issueID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "issue not found")
		}
		return nil, apperr.Wrap(apperr.Dependency, "could not load issue", err)
	}
	return &issue, nil
}

// Comments returns an issue's comments in append order.
func (s *Service) Comments(issueID uint) ([]models.Comment, error) {
	if _, err := s.Get(issueID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := s.db.
		Where("issue_id = ?", issueID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not load comments", err)
	}
	return comments, nil
}
