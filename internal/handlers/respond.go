package handlers

import (
	"log"
	"net/http"
	"strconv"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/assignment"
	"issue-tracker/internal/issuequery"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// shared collaborators, wired once by the router
var (
	Assignments  *assignment.Engine
	IssueQueries *issuequery.Service
	uploadDir    string
)

func Init(engine *assignment.Engine, queries *issuequery.Service, uploads string) {
	Assignments = engine
	IssueQueries = queries
	uploadDir = uploads
}

// ok writes the success envelope, merging any payload fields in.
func ok(c *gin.Context, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// fail converts err to the failure envelope. Only the taxonomy message
// reaches the client; the full error goes to the server log.
func fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.Dependency {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "message": apperr.UserMessage(err)})
}

func failMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": msg})
}

func currentUserID(c *gin.Context) uint {
	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		return uid
	}
	return 0
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
