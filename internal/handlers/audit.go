package handlers

import (
	"issue-tracker/internal/database"
	"issue-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	var logs []models.AuditLog
	err := database.DB.
		Preload("Actor").
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error
	if err != nil {
		failMsg(c, "could not load audit log")
		return
	}

	ok(c, gin.H{"logs": logs})
}
