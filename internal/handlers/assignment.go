package handlers

import (
	"fmt"

	"issue-tracker/internal/database"

	"github.com/gin-gonic/gin"
)

type assignRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// AssignIssue assigns the requested users to the issue; only the ones
// not already assigned are added and notified.
func AssignIssue(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	result, err := Assignments.AssignMany(id, req.UserIDs, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", id, "assign",
		fmt.Sprintf("assigned %d user(s)", len(result.Added)))

	ok(c, gin.H{"issue": result.Issue, "assigned": result.Added})
}

type removeEmployeeRequest struct {
	UserID uint `json:"user_id"`
}

// RemoveEmployee takes one user off the issue's assignee set.
func RemoveEmployee(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var req removeEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		failMsg(c, "invalid request body")
		return
	}

	issue, err := Assignments.RemoveOne(id, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", id, "unassign",
		fmt.Sprintf("removed user %d", req.UserID))

	ok(c, gin.H{"issue": issue})
}

// ClearAssignment empties the issue's assignee set entirely.
func ClearAssignment(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	issue, err := Assignments.ClearAssignment(id)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", id, "unassign", "cleared assignment")

	ok(c, gin.H{"issue": issue})
}

// GetAssignment reports the issue's current assignment facet.
func GetAssignment(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	issue, err := IssueQueries.Get(id)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, gin.H{
		"assignees":   issue.Assignees,
		"assigner":    issue.Assigner,
		"assigned_at": issue.AssignedAt,
	})
}
