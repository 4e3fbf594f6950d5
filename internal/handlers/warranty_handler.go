package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/middleware"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
)

// WarrantyHandler handles warranty submission HTTP requests
type WarrantyHandler struct {
	warrantyService *services.WarrantyService
	config          *config.Config
}

// NewWarrantyHandler creates a new warranty handler
func NewWarrantyHandler(warrantyService *services.WarrantyService, cfg *config.Config) *WarrantyHandler {
	return &WarrantyHandler{
		warrantyService: warrantyService,
		config:          cfg,
	}
}

// WarrantyRequest represents a warranty submission or edit body
type WarrantyRequest struct {
	UID                string          `json:"uid"`
	ProductType        string          `json:"product_type" binding:"required"`
	CustomerName       string          `json:"customer_name" binding:"required"`
	CustomerEmail      string          `json:"customer_email" binding:"required"`
	CustomerPhone      string          `json:"customer_phone" binding:"required"`
	CustomerAddress    string          `json:"customer_address"`
	CarMake            string          `json:"car_make" binding:"required"`
	CarModel           string          `json:"car_model" binding:"required"`
	CarYear            string          `json:"car_year"`
	RegistrationNumber string          `json:"registration_number" binding:"required"`
	PurchaseDate       string          `json:"purchase_date" binding:"required"` // YYYY-MM-DD
	WarrantyType       string          `json:"warranty_type"`
	InstallerName      string          `json:"installer_name"`
	InstallerContact   string          `json:"installer_contact"`
	ManpowerID         string          `json:"manpower_id"`
	ProductDetails     json.RawMessage `json:"product_details"`
}

// toModel validates the request and builds the warranty row
func (r WarrantyRequest) toModel(submitter middleware.UserContext, submitterName string) (*models.Warranty, error) {
	productType, err := models.ParseProductType(r.ProductType)
	if err != nil {
		return nil, err
	}

	purchaseDate, err := time.Parse("2006-01-02", r.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase_date: expected YYYY-MM-DD")
	}

	w := &models.Warranty{
		UID:                models.NewNullString(strings.TrimSpace(r.UID)),
		ProductType:        productType,
		CustomerName:       r.CustomerName,
		CustomerEmail:      r.CustomerEmail,
		CustomerPhone:      r.CustomerPhone,
		CustomerAddress:    models.NewNullString(r.CustomerAddress),
		CarMake:            r.CarMake,
		CarModel:           r.CarModel,
		CarYear:            models.NewNullString(r.CarYear),
		RegistrationNumber: r.RegistrationNumber,
		PurchaseDate:       purchaseDate,
		WarrantyType:       r.WarrantyType,
		InstallerName:      models.NewNullString(r.InstallerName),
		InstallerContact:   models.NewNullString(r.InstallerContact),
		ProductDetails:     r.ProductDetails,
		SubmittedByName:    submitterName,
		SubmittedByEmail:   submitter.Email,
		SubmittedByRole:    submitter.Role,
		UserID:             submitter.UserID,
	}

	if r.ManpowerID != "" {
		manpowerID, err := uuid.Parse(r.ManpowerID)
		if err != nil {
			return nil, fmt.Errorf("invalid manpower_id")
		}
		w.ManpowerID = uuid.NullUUID{UUID: manpowerID, Valid: true}
	}

	return w, nil
}

// Submit handles POST /api/v1/warranties
func (h *WarrantyHandler) Submit(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req WarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	w, err := req.toModel(userCtx, req.CustomerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if err := h.warrantyService.Submit(w); err != nil {
		switch err {
		case services.ErrVendorNotVerified:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "vendor_not_verified",
				Message: "Your vendor account is awaiting approval",
				Code:    "VENDOR_NOT_VERIFIED",
			})
		case services.ErrManpowerInvalid:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_manpower",
				Message: err.Error(),
			})
		default:
			log.Printf("Submit warranty: failed for user %s: %v", userCtx.UserID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "submit_failed",
				Message: "Failed to submit warranty",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, w)
}

// List handles GET /api/v1/warranties (submitter's own warranties)
func (h *WarrantyHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	warranties, err := h.warrantyService.ListByUser(userCtx.UserID)
	if err != nil {
		log.Printf("List warranties: failed for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load warranties",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"warranties": warranties,
		"total":      len(warranties),
	})
}

// Get handles GET /api/v1/warranties/:id (owner only)
func (h *WarrantyHandler) Get(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid warranty ID",
		})
		return
	}

	w, err := h.warrantyService.GetByID(id)
	if err != nil || w.UserID != userCtx.UserID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Warranty not found",
		})
		return
	}

	c.JSON(http.StatusOK, w)
}

// Update handles PUT /api/v1/warranties/:id (owner resubmit).
// The edited warranty returns to pending review.
func (h *WarrantyHandler) Update(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid warranty ID",
		})
		return
	}

	var req WarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	w, err := req.toModel(userCtx, req.CustomerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}
	w.ID = id

	if err := h.warrantyService.Resubmit(userCtx.UserID, w); err != nil {
		switch err {
		case services.ErrWarrantyNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Warranty not found",
			})
		case services.ErrManpowerInvalid:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_manpower",
				Message: err.Error(),
			})
		default:
			log.Printf("Update warranty: failed for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "update_failed",
				Message: "Failed to update warranty",
			})
		}
		return
	}

	updated, err := h.warrantyService.GetByID(id)
	if err != nil {
		log.Printf("Update warranty: failed to reload %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to load updated warranty",
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// allowed upload extensions for warranty photos
var allowedUploadExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// Upload handles POST /api/v1/warranties/uploads (multipart form, field
// "files"). Stored filenames are returned so the client can reference
// them inside product_details.
func (h *WarrantyHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Expected multipart form data",
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "No files provided",
		})
		return
	}

	maxSize := int64(h.config.Upload.MaxSizeMB) << 20
	paths := make([]string, 0, len(files))

	for _, file := range files {
		if file.Size > maxSize {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("%s exceeds the %d MB limit", file.Filename, h.config.Upload.MaxSizeMB),
			})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedUploadExts[ext] {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unsupported_file_type",
				Message: fmt.Sprintf("%s: only images and PDFs are accepted", file.Filename),
			})
			return
		}

		name := uuid.New().String() + ext
		dst := filepath.Join(h.config.Upload.Dir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Printf("Upload: failed to save %s: %v", file.Filename, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "upload_failed",
				Message: "Failed to store file",
			})
			return
		}

		paths = append(paths, h.config.Upload.PublicPath+"/"+name)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"files":   paths,
	})
}
