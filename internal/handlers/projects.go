package handlers

import (
	"strings"

	"issue-tracker/internal/database"
	"issue-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateProject takes a multipart form so the project image can ride
// along with the fields.
func CreateProject(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	repoURL := strings.TrimSpace(c.PostForm("repo_url"))

	if name == "" {
		failMsg(c, "project name is required")
		return
	}

	imageFile, err := saveUpload(c, "image")
	if err != nil {
		failMsg(c, "could not store project image")
		return
	}

	project := models.Project{
		Name:        name,
		Description: description,
		RepoURL:     repoURL,
		ImageFile:   imageFile,
	}
	if err := database.DB.Create(&project).Error; err != nil {
		failMsg(c, "could not create project")
		return
	}

	database.CreateAuditLog(currentUserID(c), "project", project.ID, "create", "created project: "+project.Name)

	ok(c, gin.H{"project": project})
}

func ListProjects(c *gin.Context) {
	var projects []models.Project
	if err := database.DB.Order("created_at desc").Find(&projects).Error; err != nil {
		failMsg(c, "could not load projects")
		return
	}
	ok(c, gin.H{"projects": projects})
}

func GetProject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid project id")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		failMsg(c, "project not found")
		return
	}
	ok(c, gin.H{"project": project})
}

func UpdateProject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid project id")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		failMsg(c, "project not found")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		failMsg(c, "project name is required")
		return
	}

	imageFile, err := saveUpload(c, "image")
	if err != nil {
		failMsg(c, "could not store project image")
		return
	}

	project.Name = name
	project.Description = strings.TrimSpace(c.PostForm("description"))
	project.RepoURL = strings.TrimSpace(c.PostForm("repo_url"))
	if imageFile != "" {
		project.ImageFile = imageFile
	}

	if err := database.DB.Save(&project).Error; err != nil {
		failMsg(c, "could not update project")
		return
	}

	database.CreateAuditLog(currentUserID(c), "project", project.ID, "update", "updated project: "+project.Name)

	ok(c, gin.H{"project": project})
}

// DeleteProject removes the project and everything under it: issues,
// their comments and their assignment rows, in one transaction, so no
// orphaned issues are left behind.
func DeleteProject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid project id")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		failMsg(c, "project not found")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var issueIDs []uint
		if err := tx.Model(&models.Issue{}).
			Where("project_id = ?", project.ID).
			Pluck("id", &issueIDs).Error; err != nil {
			return err
		}
		if len(issueIDs) > 0 {
			if err := tx.Where("issue_id IN ?", issueIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM issue_assignees WHERE issue_id IN ?", issueIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", project.ID).Delete(&models.Issue{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		failMsg(c, "could not delete project")
		return
	}

	database.CreateAuditLog(currentUserID(c), "project", project.ID, "delete", "deleted project: "+project.Name)

	ok(c, nil)
}
