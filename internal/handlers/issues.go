package handlers

import (
	"strconv"
	"strings"

	"issue-tracker/internal/database"
	"issue-tracker/internal/issuequery"
	"issue-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListIssues serves the filtered, paginated issue view.
func ListIssues(c *gin.Context) {
	var filter issuequery.Filter

	if pidStr := c.Query("project_id"); pidStr != "" {
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 {
			filter.ProjectID = uint(pid)
		}
	}
	if status := models.Status(c.Query("status")); status.Valid() {
		filter.Status = status
	}
	if priority := models.Priority(c.Query("priority")); priority.Valid() {
		filter.Priority = priority
	}
	filter.Title = strings.TrimSpace(c.Query("title"))

	page := 1
	if pStr := c.Query("page"); pStr != "" {
		if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
			page = p
		}
	}
	pageSize := 0
	if sStr := c.Query("limit"); sStr != "" {
		if s, err := strconv.Atoi(sStr); err == nil && s > 0 {
			pageSize = s
		}
	}

	result, err := IssueQueries.List(filter, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"issues": result.Items,
		"total":  result.Total,
		"pages":  result.Pages,
		"page":   result.Page,
	})
}

func ListIssuesWithEmployees(c *gin.Context) {
	summaries, err := IssueQueries.WithEmployeeSummary()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"issues": summaries})
}

func GetIssue(c *gin.Context) {
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
	ok(c, gin.H{"issue": issue})
}

// CreateIssue creates an issue under a project; multipart so an
// attachment can be included.
func CreateIssue(c *gin.Context) {
	projectID, valid := paramID(c, "projectId")
	if !valid {
		failMsg(c, "invalid project id")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, projectID).Error; err != nil {
		failMsg(c, "project not found")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		failMsg(c, "issue title is required")
		return
	}

	priority := models.PriorityMedium
	if p := models.Priority(c.PostForm("priority")); p != "" {
		if !p.Valid() {
			failMsg(c, "invalid priority")
			return
		}
		priority = p
	}

	attachment, err := saveUpload(c, "attachment")
	if err != nil {
		failMsg(c, "could not store attachment")
		return
	}

	issue := models.Issue{
		ProjectID:      project.ID,
		Title:          title,
		Description:    strings.TrimSpace(c.PostForm("description")),
		Priority:       priority,
		Status:         models.StatusPending,
		AttachmentFile: attachment,
	}
	if err := database.DB.Create(&issue).Error; err != nil {
		failMsg(c, "could not create issue")
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", issue.ID, "create", "created issue: "+issue.Title)

	ok(c, gin.H{"issue": issue})
}

type updateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func UpdateIssue(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var issue models.Issue
	if err := database.DB.First(&issue, id).Error; err != nil {
		failMsg(c, "issue not found")
		return
	}

	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		failMsg(c, "issue title is required")
		return
	}
	if req.Priority != "" && !models.Priority(req.Priority).Valid() {
		failMsg(c, "invalid priority")
		return
	}

	issue.Title = req.Title
	issue.Description = strings.TrimSpace(req.Description)
	if req.Priority != "" {
		issue.Priority = models.Priority(req.Priority)
	}

	if err := database.DB.Save(&issue).Error; err != nil {
		failMsg(c, "could not update issue")
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", issue.ID, "update", "updated issue: "+issue.Title)

	ok(c, gin.H{"issue": issue})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateIssueStatus sets the work status. Any status may be set from
// any other, there is no enforced ordering.
func UpdateIssueStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var issue models.Issue
	if err := database.DB.First(&issue, id).Error; err != nil {
		failMsg(c, "issue not found")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	status := models.Status(req.Status)
	if !status.Valid() {
		failMsg(c, "invalid status")
		return
	}

	issue.Status = status
	if err := database.DB.Save(&issue).Error; err != nil {
		failMsg(c, "could not update status")
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", issue.ID, "status_change", "status set to: "+string(status))

	ok(c, gin.H{"issue": issue})
}

func GetIssueStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var issue models.Issue
	if err := database.DB.First(&issue, id).Error; err != nil {
		failMsg(c, "issue not found")
		return
	}
	ok(c, gin.H{"status": issue.Status})
}

type commentRequest struct {
	Text string `json:"text"`
}

func AddComment(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var issue models.Issue
	if err := database.DB.First(&issue, id).Error; err != nil {
		failMsg(c, "issue not found")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		failMsg(c, "comment text is required")
		return
	}

	comment := models.Comment{IssueID: issue.ID, Text: req.Text}
	if err := database.DB.Create(&comment).Error; err != nil {
		failMsg(c, "could not save comment")
		return
	}

	ok(c, gin.H{"comment": comment})
}

func ListComments(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	comments, err := IssueQueries.Comments(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"comments": comments})
}

func ListIssuesByProject(c *gin.Context) {
	projectID, valid := paramID(c, "projectId")
	if !valid {
		failMsg(c, "invalid project id")
		return
	}

	issues, err := IssueQueries.ByProject(projectID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"issues": issues})
}

// DeleteIssue hard-deletes the issue with its comments and assignment
// rows.
func DeleteIssue(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid issue id")
		return
	}

	var issue models.Issue
	if err := database.DB.First(&issue, id).Error; err != nil {
		failMsg(c, "issue not found")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", issue.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM issue_assignees WHERE issue_id = ?", issue.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&issue).Error
	})
	if err != nil {
		failMsg(c, "could not delete issue")
		return
	}

	database.CreateAuditLog(currentUserID(c), "issue", issue.ID, "delete", "deleted issue: "+issue.Title)

	ok(c, nil)
}
