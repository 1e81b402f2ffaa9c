package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/identity/internal/common"
	"github.com/dmitrijs2005/identity/internal/server/models"
	"github.com/dmitrijs2005/identity/internal/server/services"
)

// Uniform failure messages. Their exact wording (including the trailing
// period on the update message) is part of the public contract; other
// services match on them.
const (
	msgAuthenticationFailed = "Could not find account, user, or passwords did not match"
	msgUpdateUserFailed     = "Could not find account, user, or passwords did not match."
	msgImpersonationFailed  = "Could not find account, user or insufficient privilege to impersonate"
	msgInvalidUserID        = "Invalid userId"
)

type registerRequest struct {
	UserID       string `json:"userId" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	AccountName  string `json:"accountName" binding:"required"`
	FriendlyName string `json:"friendlyName" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type authenticateRequest struct {
	AccountID string `json:"accountId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Email        string `json:"email"`
	FriendlyName string `json:"friendlyName"`
	OldPassword  string `json:"oldPassword"`
	NewPassword  string `json:"newPassword"`
}

type impersonateRequest struct {
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "Failed", "message": "invalid request body"})
		return
	}

	accountID, err := s.svc.Register(c.Request.Context(), services.RegisterParams{
		UserID:       req.UserID,
		Email:        req.Email,
		AccountName:  req.AccountName,
		FriendlyName: req.FriendlyName,
		Password:     req.Password,
	})
	switch {
	case errors.Is(err, common.ErrDuplicateUserID):
		c.JSON(http.StatusBadRequest, gin.H{"status": "Failed", "message": msgInvalidUserID})
	case errors.Is(err, common.ErrMailDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{"status": "Failed", "accountId": accountID})
	case err != nil:
		s.log.Error(c.Request.Context(), "registration failed", "error", err)
		c.Status(http.StatusInternalServerError)
	default:
		c.JSON(http.StatusOK, gin.H{"accountId": accountID, "status": "Success"})
	}
}

func (s *Server) handleAuthenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	token, err := s.svc.Authenticate(c.Request.Context(), req.AccountID, req.UserID, req.Password)
	switch {
	case errors.Is(err, common.ErrAuthenticationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgAuthenticationFailed})
	case err != nil:
		s.log.Error(c.Request.Context(), "authentication error", "error", err)
		c.Status(http.StatusInternalServerError)
	default:
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// handlePublicSignature never fails outward; missing key material is an
// empty object.
func (s *Server) handlePublicSignature(c *gin.Context) {
	sig, err := s.svc.PublicSignature(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig})
}

func (s *Server) handleGetConfiguration(c *gin.Context) {
	block, err := s.svc.GetConfiguration(c.Request.Context(), c.GetBool(ctxIsLocal))
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.Status(http.StatusUnprocessableEntity)
	case err != nil:
		s.log.Error(c.Request.Context(), "configuration lookup failed", "error", err)
		c.Status(http.StatusInternalServerError)
	default:
		c.JSON(http.StatusOK, block)
	}
}

// handleUpdateConfiguration replies 404 to non-root callers so the
// endpoint's existence is not confirmed to them.
func (s *Server) handleUpdateConfiguration(c *gin.Context) {
	var cfg models.Configuration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err := s.svc.UpdateConfiguration(c.Request.Context(), claims(c), &cfg)
	switch {
	case errors.Is(err, common.ErrInsufficientPrivilege):
		c.Status(http.StatusNotFound)
	case err != nil:
		s.log.Error(c.Request.Context(), "configuration update failed", "error", err)
		c.Status(http.StatusInternalServerError)
	default:
		c.Status(http.StatusOK)
	}
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	// A malformed body is treated as an empty field set so it falls into
	// the same uniform failure as a request with no fields.
	var req updateUserRequest
	_ = c.ShouldBindJSON(&req)

	err := s.svc.UpdateUser(c.Request.Context(), claims(c), services.UpdateUserParams{
		Email:        req.Email,
		FriendlyName: req.FriendlyName,
		OldPassword:  req.OldPassword,
		NewPassword:  req.NewPassword,
	})
	switch {
	case errors.Is(err, common.ErrUpdateUserFailed):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgUpdateUserFailed})
	case err != nil:
		s.log.Error(c.Request.Context(), "user update failed", "error", err)
		c.Status(http.StatusInternalServerError)
	default:
		c.Status(http.StatusOK)
	}
}

func (s *Server) handleImpersonate(c *gin.Context) {
	// Body binding errors are ignored: the privilege gate must run before
	// anything about the target is inspected or revealed.
	var req impersonateRequest
	_ = c.ShouldBindJSON(&req)

	token, err := s.svc.Impersonate(c.Request.Context(), claims(c), req.AccountID, req.UserID)
	switch {
	case errors.Is(err, common.ErrImpersonationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgImpersonationFailed})
	case err != nil:
		s.log.Error(c.Request.Context(), "impersonation failed", "error", err)
		c.Status(http.StatusBadRequest)
	default:
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
