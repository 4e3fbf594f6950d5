package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/middleware"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
	"github.com/shieldtech/warranty-portal-backend/pkg/validator"
)

// VendorHandler handles vendor-facing HTTP requests: the emailed
// verification link and installer (manpower) management.
type VendorHandler struct {
	verificationService *services.VerificationService
	manpowerRepository  *database.ManpowerRepository
	phoneValidator      *validator.PhoneValidator
	portalURL           string
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(
	verificationService *services.VerificationService,
	manpowerRepository *database.ManpowerRepository,
	phoneValidator *validator.PhoneValidator,
	portalURL string,
) *VendorHandler {
	return &VendorHandler{
		verificationService: verificationService,
		manpowerRepository:  manpowerRepository,
		phoneValidator:      phoneValidator,
		portalURL:           portalURL,
	}
}

const verifyPageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; background: #f4f6f8; margin: 0; }
.card { max-width: 480px; margin: 80px auto; background: #fff; border-radius: 12px; padding: 40px; text-align: center; box-shadow: 0 2px 12px rgba(0,0,0,.08); }
h1 { font-size: 22px; color: #1a1a2e; }
p { color: #555; line-height: 1.5; }
.ok { color: #2e7d32; } .warn { color: #f9a825; } .err { color: #c62828; }
a.btn { display: inline-block; margin-top: 16px; padding: 10px 24px; background: #1a1a2e; color: #fff; text-decoration: none; border-radius: 6px; }
</style>
</head>
<body><div class="card"><h1 class="%s">%s</h1><p>%s</p>%s</div></body>
</html>`

func verifyPage(title, class, heading, body, action string) string {
	return fmt.Sprintf(verifyPageTemplate, title, class, heading, body, action)
}

// VerifyByToken handles GET /vendor/verify?token=...
// This is the one-click approval link emailed to the admin inbox; it
// renders HTML because it is opened in a browser, not called by the app.
func (h *VendorHandler) VerifyByToken(c *gin.Context) {
	raw := c.Query("token")
	token, err := uuid.Parse(raw)
	if err != nil {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(verifyPage(
			"Invalid link", "err", "Invalid verification link",
			"This link is malformed. Please use the link from the approval email.", "")))
		return
	}

	profile, err := h.verificationService.ApproveByToken(token)
	switch {
	case err == services.ErrVendorNotFound:
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(verifyPage(
			"Unknown link", "err", "Verification link not found",
			"This link does not match any pending vendor. It may have been removed.", "")))
	case err == services.ErrAlreadyVerified:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(verifyPage(
			"Already verified", "warn", "Vendor already verified",
			fmt.Sprintf("%s has already been approved. No further action is needed.", profile.Name), "")))
	case err != nil:
		log.Printf("VerifyByToken: failed to approve: %v", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(verifyPage(
			"Error", "err", "Something went wrong",
			"We could not complete the verification. Please try again later.", "")))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(verifyPage(
			"Vendor approved", "ok", "Vendor approved",
			fmt.Sprintf("%s can now sign in and submit warranties. We have emailed them the good news.", profile.Name),
			fmt.Sprintf(`<a class="btn" href="%s">Open portal</a>`, h.portalURL))))
	}
}

// ManpowerRequest represents the create/update body for an installer
type ManpowerRequest struct {
	Name           string `json:"name" binding:"required"`
	PhoneNumber    string `json:"phone_number" binding:"required"`
	ApplicatorType string `json:"applicator_type" binding:"required"`
}

// ListManpower handles GET /api/v1/vendor/manpower
func (h *VendorHandler) ListManpower(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	manpower, err := h.manpowerRepository.ListByVendor(userCtx.UserID)
	if err != nil {
		log.Printf("ListManpower: failed for vendor %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load installers",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"manpower": manpower,
		"total":    len(manpower),
	})
}

// CreateManpower handles POST /api/v1/vendor/manpower
func (h *VendorHandler) CreateManpower(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ManpowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, applicatorType, ok := h.validateManpower(c, req)
	if !ok {
		return
	}

	mp, err := h.manpowerRepository.Create(userCtx.UserID, req.Name, phone, applicatorType)
	if err != nil {
		log.Printf("CreateManpower: failed for vendor %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create installer",
		})
		return
	}

	c.JSON(http.StatusCreated, mp)
}

// UpdateManpower handles PUT /api/v1/vendor/manpower/:id
func (h *VendorHandler) UpdateManpower(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid installer ID",
		})
		return
	}

	var req ManpowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, applicatorType, ok := h.validateManpower(c, req)
	if !ok {
		return
	}

	if err := h.manpowerRepository.Update(id, userCtx.UserID, req.Name, phone, applicatorType); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Installer not found",
		})
		return
	}

	mp, err := h.manpowerRepository.GetByID(id)
	if err != nil || mp == nil {
		log.Printf("UpdateManpower: failed to reload %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to load updated installer",
		})
		return
	}

	c.JSON(http.StatusOK, mp)
}

// DeleteManpowerRequest carries the optional removal reason
type DeleteManpowerRequest struct {
	Reason string `json:"reason"`
}

// DeleteManpower handles DELETE /api/v1/vendor/manpower/:id
// Installers are soft-deleted so historic warranties keep their reference.
func (h *VendorHandler) DeleteManpower(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid installer ID",
		})
		return
	}

	var req DeleteManpowerRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.manpowerRepository.SoftDelete(id, userCtx.UserID, req.Reason); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Installer not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Installer removed",
	})
}

func (h *VendorHandler) validateManpower(c *gin.Context, req ManpowerRequest) (string, models.ApplicatorType, bool) {
	phone, err := h.phoneValidator.Validate(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return "", "", false
	}

	applicatorType, err := models.ParseApplicatorType(req.ApplicatorType)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_applicator_type",
			Message: err.Error(),
		})
		return "", "", false
	}

	return phone, applicatorType, true
}
