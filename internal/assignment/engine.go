// Package assignment holds the issue-assignment workflow: differential
// adds to an issue's assignee set with one notification per account
// that actually joined the set.
package assignment

import (
	"errors"
	"fmt"
	"log"
	"time"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/mailer"
	"issue-tracker/internal/models"

	"gorm.io/gorm"
)

type Engine struct {
	db       *gorm.DB
	notifier mailer.Notifier
}

func New(db *gorm.DB, notifier mailer.Notifier) *Engine {
	return &Engine{db: db, notifier: notifier}
}

// AssignedAccount identifies an account that was newly assigned and
// notified in an AssignMany call.
type AssignedAccount struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Result struct {
	Issue models.Issue      `json:"issue"`
	Added []AssignedAccount `json:"assigned"`
}

// AssignMany adds the requested accounts to the issue's assignee set,
// skipping any that are already members. Requesting only members is an
// error, not a silent success, so callers can tell "nothing to do"
// apart from "something changed". Notifications go out after the
// mutation commits and are never rolled back on delivery failure.
func (e *Engine) AssignMany(issueID uint, accountIDs []uint, actingAdminID uint) (*Result, error) {
	if len(accountIDs) == 0 {
		return nil, apperr.New(apperr.Validation, "no users requested for assignment")
	}

	var issue models.Issue
	if err := e.db.Preload("Assignees").Preload("Project").First(&issue, issueID).Error; err != nil {
		return nil, issueLoadError(err)
	}

	existing := make(map[uint]struct{}, len(issue.Assignees))
	for _, a := range issue.Assignees {
		existing[a.ID] = struct{}{}
	}

	// differential add: keep request order, drop members and duplicates
	var toAdd []uint
	requested := make(map[uint]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := requested[id]; ok {
			continue
		}
		requested[id] = struct{}{}
		toAdd = append(toAdd, id)
	}
	if len(toAdd) == 0 {
		return nil, apperr.New(apperr.NoOp, "users already assigned")
	}

	var found []models.Account
	if err := e.db.Find(&found, toAdd).Error; err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not load accounts", err)
	}
	if len(found) != len(toAdd) {
		return nil, apperr.New(apperr.Validation, "unknown user in assignment request")
	}
	byID := make(map[uint]models.Account, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	accounts := make([]models.Account, 0, len(toAdd))
	for _, id := range toAdd {
		accounts = append(accounts, byID[id])
	}

	// The join-table insert is an add-to-set, not an overwrite of the
	// whole assignee field, so two racing assigns union their additions
	// instead of the second silently dropping the first.
	now := time.Now()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&issue).Association("Assignees").Append(accounts); err != nil {
			return err
		}
		return tx.Model(&issue).Updates(map[string]interface{}{
			"assigner_id": actingAdminID,
			"assigned_at": now,
		}).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not save assignment", err)
	}

	added := make([]AssignedAccount, 0, len(accounts))
	for _, acct := range accounts {
		subject := fmt.Sprintf("New issue assigned: %s", issue.Title)
		body := fmt.Sprintf(
			"Hi %s,\r\n\r\nYou have been assigned to issue %q in project %q.\r\n",
			acct.Name, issue.Title, issue.Project.Name,
		)
		if err := e.notifier.Send(acct.Email, subject, body); err != nil {
			log.Printf("assignment notification to %s failed: %v", acct.Email, err)
		}
		added = append(added, AssignedAccount{ID: acct.ID, Name: acct.Name})
	}

	if err := e.db.Preload("Assignees").First(&issue, issueID).Error; err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not reload issue", err)
	}
	return &Result{Issue: issue, Added: added}, nil
}

// RemoveOne takes one account out of the issue's assignee set.
// Removing a non-member succeeds unchanged; unlike AssignMany there is
// no strict no-op check here, and that asymmetry is deliberate.
func (e *Engine) RemoveOne(issueID, accountID uint) (*models.Issue, error) {
	var issue models.Issue
	if err := e.db.First(&issue, issueID).Error; err != nil {
		return nil, issueLoadError(err)
	}

	if err := e.db.Model(&issue).Association("Assignees").Delete(&models.Account{ID: accountID}); err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not update assignment", err)
	}

	if err := e.db.Preload("Assignees").First(&issue, issueID).Error; err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not reload issue", err)
	}
	return &issue, nil
}

// ClearAssignment unconditionally empties the assignee set and drops
// the assigner reference and timestamp.
func (e *Engine) ClearAssignment(issueID uint) (*models.Issue, error) {
	var issue models.Issue
	if err := e.db.First(&issue, issueID).Error; err != nil {
		return nil, issueLoadError(err)
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&issue).Association("Assignees").Clear(); err != nil {
			return err
		}
		return tx.Model(&issue).Updates(map[string]interface{}{
			"assigner_id": nil,
			"assigned_at": nil,
		}).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not clear assignment", err)
	}

	if err := e.db.Preload("Assignees").First(&issue, issueID).Error; err != nil {
		return nil, apperr.Wrap(apperr.Dependency, "could not reload issue", err)
	}
	return &issue, nil
}

func issueLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "issue not found")
	}
	return apperr.Wrap(apperr.Dependency, "could not load issue", err)
}
