package handlers

import (
	"strings"

	"issue-tracker/internal/database"
	"issue-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// checkAccountUnique returns a failure message when another account
// already holds the email or employee id. This is a pre-check, not a
// constraint: the unique indexes are the real guard.
func checkAccountUnique(email, employeeID string, selfID uint) string {
	var count int64
	q := database.DB.Model(&models.Account{}).Where("email = ?", email)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	q.Count(&count)
	if count > 0 {
		return "an account with this email already exists"
	}

	q = database.DB.Model(&models.Account{}).Where("employee_id = ?", employeeID)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	q.Count(&count)
	if count > 0 {
		return "an account with this employee id already exists"
	}
	return ""
}

type createAccountRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// CreateAccount is the admin path for adding regular users.
func CreateAccount(c *gin.Context) {
	var req createAccountRequest
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
		Role:         models.RoleUser,
	}
	if err := database.DB.Create(&account).Error; err != nil {
		failMsg(c, "could not create account")
		return
	}

	database.CreateAuditLog(currentUserID(c), "account", account.ID, "create", "created user: "+account.Email)

	ok(c, gin.H{"account": account})
}

func ListAccounts(c *gin.Context) {
	q := database.DB.Order("name asc")
	if role := models.Role(c.Query("role")); role.Valid() {
		q = q.Where("role = ?", role)
	}

	var accounts []models.Account
	if err := q.Find(&accounts).Error; err != nil {
		failMsg(c, "could not load accounts")
		return
	}
	ok(c, gin.H{"accounts": accounts})
}

func GetAccount(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid account id")
		return
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		failMsg(c, "account not found")
		return
	}
	ok(c, gin.H{"account": account})
}

type updateAccountRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"` // optional, blank keeps the old one
}

func UpdateAccount(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid account id")
		return
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		failMsg(c, "account not found")
		return
	}

	var req updateAccountRequest
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

	if msg := checkAccountUnique(req.Email, req.EmployeeID, account.ID); msg != "" {
		failMsg(c, msg)
		return
	}

	account.Name = req.Name
	account.Email = req.Email
	account.EmployeeID = req.EmployeeID

	if req.Password != "" {
		if len(req.Password) < 6 {
			failMsg(c, "password must be at least 6 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			failMsg(c, "could not update account")
			return
		}
		account.PasswordHash = string(hash)
	}

	if err := database.DB.Save(&account).Error; err != nil {
		failMsg(c, "could not update account")
		return
	}

	database.CreateAuditLog(currentUserID(c), "account", account.ID, "update", "updated account: "+account.Email)

	ok(c, gin.H{"account": account})
}

// PromoteAccount raises a regular user to admin. One-way: there is no
// demotion path.
func PromoteAccount(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid account id")
		return
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		failMsg(c, "account not found")
		return
	}

	if account.Role == models.RoleAdmin {
		failMsg(c, "account is already an admin")
		return
	}

	account.Role = models.RoleAdmin
	if err := database.DB.Save(&account).Error; err != nil {
		failMsg(c, "could not update account")
		return
	}

	database.CreateAuditLog(currentUserID(c), "account", account.ID, "promote", "promoted to admin: "+account.Email)

	ok(c, gin.H{"account": account})
}

// DeleteAccount hard-deletes the account. Issues referencing it keep
// their rows; reads render the missing reference with a placeholder.
func DeleteAccount(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		failMsg(c, "invalid account id")
		return
	}

	if id == currentUserID(c) {
		failMsg(c, "cannot delete your own account")
		return
	}

	var account models.Account
	if err := database.DB.First(&account, id).Error; err != nil {
		failMsg(c, "account not found")
		return
	}

	if err := database.DB.Delete(&account).Error; err != nil {
		failMsg(c, "could not delete account")
		return
	}

	database.CreateAuditLog(currentUserID(c), "account", account.ID, "delete", "deleted account: "+account.Email)

	ok(c, nil)
}
