package handlers

import (
	"strings"

	"issue-tracker/internal/database"
	"issue-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// Register is admin self-registration; regular users are created by an
// admin through the accounts API.
func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)

	if req.Name == "" || req.Email == "" || req.EmployeeID == "" {
		failMsg(c, "name, email and employee id are required")
		return
	}
	if len(req.Password) < 6 {
		failMsg(c, "password must be at least 6 characters")
		return
	}

	if msg := checkAccountUnique(req.Email, req.EmployeeID, 0); msg != "" {
		failMsg(c, msg)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		failMsg(c, "could not create account")
		return
	}

	account := models.Account{
		Name:         req.Name,
		Email:        req.Email,
		EmployeeID:   req.EmployeeID,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := database.DB.Create(&account).Error; err != nil {
		failMsg(c, "could not create account")
		return
	}

	database.CreateAuditLog(account.ID, "account", account.ID, "register", "admin registered: "+account.Email)

	ok(c, gin.H{"account": account})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, "invalid request body")
		return
	}

	var account models.Account
	if err := database.DB.Where("email = ?", req.Email).First(&account).Error; err != nil {
		failMsg(c, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		failMsg(c, "invalid email or password")
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", account.ID)
	sess.Set("role", string(account.Role))
	_ = sess.Save()

	ok(c, gin.H{"account": account})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	ok(c, nil)
}

// Me returns the account behind the current session.
func Me(c *gin.Context) {
	if acct, exists := c.Get("CurrentAccount"); exists {
		ok(c, gin.H{"account": acct})
		return
	}
	failMsg(c, "authentication required")
}
