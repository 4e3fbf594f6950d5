package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/listing"
	"github.com/shieldtech/warranty-portal-backend/internal/middleware"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
	"github.com/shieldtech/warranty-portal-backend/internal/utils"
	"github.com/shieldtech/warranty-portal-backend/pkg/email"
	"github.com/shieldtech/warranty-portal-backend/pkg/validator"
)

// AdminHandler handles the admin dashboard HTTP requests
type AdminHandler struct {
	warrantyService     *services.WarrantyService
	verificationService *services.VerificationService
	activityService     *services.ActivityService
	profileRepository   *database.ProfileRepository
	vendorRepository    *database.VendorRepository
	manpowerRepository  *database.ManpowerRepository
	mailer              email.Mailer
	portalURL           string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	warrantyService *services.WarrantyService,
	verificationService *services.VerificationService,
	activityService *services.ActivityService,
	profileRepository *database.ProfileRepository,
	vendorRepository *database.VendorRepository,
	manpowerRepository *database.ManpowerRepository,
	mailer email.Mailer,
	portalURL string,
) *AdminHandler {
	return &AdminHandler{
		warrantyService:     warrantyService,
		verificationService: verificationService,
		activityService:     activityService,
		profileRepository:   profileRepository,
		vendorRepository:    vendorRepository,
		manpowerRepository:  manpowerRepository,
		mailer:              mailer,
		portalURL:           portalURL,
	}
}

// actor resolves the acting admin's identity for activity logging
func (h *AdminHandler) actor(c *gin.Context) services.Actor {
	userCtx := middleware.MustGetUserContext(c)

	name := userCtx.Email
	if profile, err := h.profileRepository.GetByID(userCtx.UserID); err == nil && profile != nil {
		name = profile.Name
	}

	return services.Actor{
		ID:        userCtx.UserID,
		Name:      name,
		Email:     userCtx.Email,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// StatsResponse aggregates the dashboard counters
type StatsResponse struct {
	Warranties map[string]int `json:"warranties"`
	Vendors    map[string]int `json:"vendors"`
	Customers  int            `json:"customers"`
	Manpower   int            `json:"manpower"`
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	warrantyCounts, err := h.warrantyService.CountByStatus()
	if err != nil {
		log.Printf("Stats: failed to count warranties: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to load statistics",
		})
		return
	}

	vendorCounts, err := h.vendorRepository.CountByVerificationStatus()
	if err != nil {
		log.Printf("Stats: failed to count vendors: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to load statistics",
		})
		return
	}

	customers, err := h.profileRepository.CountByRole(models.RoleCustomer)
	if err != nil {
		log.Printf("Stats: failed to count customers: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to load statistics",
		})
		return
	}

	manpower, err := h.manpowerRepository.Count()
	if err != nil {
		log.Printf("Stats: failed to count manpower: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to load statistics",
		})
		return
	}

	warranties := make(map[string]int, len(warrantyCounts))
	for status, count := range warrantyCounts {
		warranties[string(status)] = count
	}

	c.JSON(http.StatusOK, StatsResponse{
		Warranties: warranties,
		Vendors:    vendorCounts,
		Customers:  customers,
		Manpower:   manpower,
	})
}

func warrantySearchFields(w models.Warranty) []string {
	return []string{
		w.CustomerName,
		w.CustomerEmail,
		w.CustomerPhone,
		w.RegistrationNumber,
		w.CarMake,
		w.CarModel,
		w.UID.String,
		string(w.ProductType),
		string(w.Status),
		w.SubmittedByName,
		w.SubmittedByEmail,
	}
}

func warrantyCreatedAt(w models.Warranty) time.Time { return w.CreatedAt }

var warrantySortKeys = map[string]func(a, b models.Warranty) bool{
	"created_at":    func(a, b models.Warranty) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"purchase_date": func(a, b models.Warranty) bool { return a.PurchaseDate.Before(b.PurchaseDate) },
	"customer_name": func(a, b models.Warranty) bool { return a.CustomerName < b.CustomerName },
	"product_type":  func(a, b models.Warranty) bool { return a.ProductType < b.ProductType },
	"status":        func(a, b models.Warranty) bool { return a.Status < b.Status },
}

// filteredWarranties loads all warranties and applies the shared listing
// query. The list view and the CSV export run the identical pipeline, so
// an export always matches what the dashboard shows.
func (h *AdminHandler) filteredWarranties(q listing.Query) ([]models.Warranty, error) {
	warranties, err := h.warrantyService.ListAll()
	if err != nil {
		return nil, err
	}

	filtered := listing.Filter(warranties, q, warrantySearchFields, warrantyCreatedAt)
	listing.Sort(filtered, q, warrantySortKeys)
	return filtered, nil
}

// ListWarranties handles GET /api/v1/admin/warranties
func (h *AdminHandler) ListWarranties(c *gin.Context) {
	q, err := listing.ParseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	filtered, err := h.filteredWarranties(q)
	if err != nil {
		log.Printf("ListWarranties: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load warranties",
		})
		return
	}

	page, meta := listing.Paginate(filtered, q)

	c.JSON(http.StatusOK, gin.H{
		"warranties": page,
		"pagination": meta,
	})
}

var warrantyCSVColumns = []string{
	"id", "uid", "product_type", "customer_name", "customer_email",
	"customer_phone", "customer_address", "car_make", "car_model",
	"car_year", "registration_number", "purchase_date", "warranty_type",
	"installer_name", "installer_contact", "status", "rejection_reason",
	"submitted_by_name", "submitted_by_email", "submitted_by_role",
	"created_at",
}

// ExportWarranties handles GET /api/v1/admin/warranties/export. It emits
// a CSV of the same filtered and sorted set the list view shows, ignoring
// pagination. The product_details blob is flattened into one named column
// per key present anywhere in the exported set.
func (h *AdminHandler) ExportWarranties(c *gin.Context) {
	q, err := listing.ParseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	filtered, err := h.filteredWarranties(q)
	if err != nil {
		log.Printf("ExportWarranties: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "export_failed",
			Message: "Failed to load warranties",
		})
		return
	}

	details := make([][]byte, 0, len(filtered))
	for _, w := range filtered {
		details = append(details, w.ProductDetails)
	}
	detailKeys := listing.CollectJSONKeys(details...)

	header := append(append([]string{}, warrantyCSVColumns...), detailKeys...)

	rows := make([][]string, 0, len(filtered))
	for _, w := range filtered {
		row := []string{
			w.ID.String(),
			w.UID.String,
			string(w.ProductType),
			w.CustomerName,
			w.CustomerEmail,
			w.CustomerPhone,
			w.CustomerAddress.String,
			w.CarMake,
			w.CarModel,
			w.CarYear.String,
			w.RegistrationNumber,
			w.PurchaseDate.Format("2006-01-02"),
			w.WarrantyType,
			w.InstallerName.String,
			w.InstallerContact.String,
			string(w.Status),
			w.RejectionReason.String,
			w.SubmittedByName,
			w.SubmittedByEmail,
			string(w.SubmittedByRole),
			w.CreatedAt.Format(time.RFC3339),
		}
		for _, key := range detailKeys {
			row = append(row, listing.JSONField(w.ProductDetails, key))
		}
		rows = append(rows, row)
	}

	filename := fmt.Sprintf("warranties-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := listing.WriteCSV(c.Writer, header, rows); err != nil {
		log.Printf("ExportWarranties: failed to stream CSV: %v", err)
	}
}

// UpdateWarrantyStatusRequest represents the review decision body
type UpdateWarrantyStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// UpdateWarrantyStatus handles PUT /api/v1/admin/warranties/:id/status
func (h *AdminHandler) UpdateWarrantyStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid warranty ID",
		})
		return
	}

	var req UpdateWarrantyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	status, err := models.ParseWarrantyStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_status",
			Message: err.Error(),
		})
		return
	}

	w, err := h.warrantyService.UpdateStatus(h.actor(c), id, status, req.RejectionReason)
	if err != nil {
		switch err {
		case services.ErrWarrantyNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Warranty not found",
			})
		case services.ErrReasonRequired:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "reason_required",
				Message: "A rejection reason is required",
				Code:    "REASON_REQUIRED",
			})
		case services.ErrInvalidTransition:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_transition",
				Message: "This status change is not allowed",
				Code:    "INVALID_TRANSITION",
			})
		default:
			log.Printf("UpdateWarrantyStatus: failed for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "update_failed",
				Message: "Failed to update warranty status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

func vendorSearchFields(v models.VendorRecord) []string {
	return []string{v.Name, v.Email, v.PhoneNumber, v.StoreName, v.City, v.State, v.Pincode}
}

func vendorCreatedAt(v models.VendorRecord) time.Time { return v.CreatedAt }

var vendorSortKeys = map[string]func(a, b models.VendorRecord) bool{
	"created_at": func(a, b models.VendorRecord) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"name":       func(a, b models.VendorRecord) bool { return a.Name < b.Name },
	"store_name": func(a, b models.VendorRecord) bool { return a.StoreName < b.StoreName },
}

// ListVendors handles GET /api/v1/admin/vendors. The dashboard works on
// the complete vendor set, so the response is never paginated; search,
// date range and sort still apply.
func (h *AdminHandler) ListVendors(c *gin.Context) {
	q, err := listing.ParseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	vendors, err := h.vendorRepository.ListVendors()
	if err != nil {
		log.Printf("ListVendors: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load vendors",
		})
		return
	}

	filtered := listing.Filter(vendors, q, vendorSearchFields, vendorCreatedAt)
	listing.Sort(filtered, q, vendorSortKeys)

	c.JSON(http.StatusOK, gin.H{
		"vendors": filtered,
		"total":   len(filtered),
	})
}

// GetVendor handles GET /api/v1/admin/vendors/:id
func (h *AdminHandler) GetVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid vendor ID",
		})
		return
	}

	vendor, err := h.vendorRepository.GetVendorByID(id)
	if err != nil {
		log.Printf("GetVendor: failed for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to load vendor",
		})
		return
	}
	if vendor == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Vendor not found",
		})
		return
	}

	manpower, err := h.manpowerRepository.ListByVendor(id)
	if err != nil {
		log.Printf("GetVendor: failed to load manpower for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to load vendor installers",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendor":   vendor,
		"manpower": manpower,
	})
}

// UpdateVendorVerificationRequest represents the dashboard approval body
type UpdateVendorVerificationRequest struct {
	IsVerified      *bool  `json:"is_verified" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// UpdateVendorVerification handles PUT /api/v1/admin/vendors/:id/verification
func (h *AdminHandler) UpdateVendorVerification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid vendor ID",
		})
		return
	}

	var req UpdateVendorVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	actor := h.actor(c)
	if *req.IsVerified {
		err = h.verificationService.Approve(actor, id)
	} else {
		err = h.verificationService.Reject(actor, id, req.RejectionReason)
	}

	if err != nil {
		switch err {
		case services.ErrVendorNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Vendor not found",
			})
		case services.ErrAlreadyVerified:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "already_verified",
				Message: "Vendor is already verified",
				Code:    "ALREADY_VERIFIED",
			})
		case services.ErrReasonRequired:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "reason_required",
				Message: "A rejection reason is required",
				Code:    "REASON_REQUIRED",
			})
		default:
			log.Printf("UpdateVendorVerification: failed for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "update_failed",
				Message: "Failed to update vendor verification",
			})
		}
		return
	}

	vendor, err := h.vendorRepository.GetVendorByID(id)
	if err != nil || vendor == nil {
		log.Printf("UpdateVendorVerification: failed to reload %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to load updated vendor",
		})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

func customerSearchFields(r models.CustomerRecord) []string {
	return []string{r.Name, r.Email, r.PhoneNumber}
}

func customerCreatedAt(r models.CustomerRecord) time.Time { return r.CreatedAt }

var customerSortKeys = map[string]func(a, b models.CustomerRecord) bool{
	"created_at":     func(a, b models.CustomerRecord) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"name":           func(a, b models.CustomerRecord) bool { return a.Name < b.Name },
	"warranty_count": func(a, b models.CustomerRecord) bool { return a.WarrantyCount < b.WarrantyCount },
}

// ListCustomers handles GET /api/v1/admin/customers. Like the vendor
// list, the full filtered set is returned without pagination.
func (h *AdminHandler) ListCustomers(c *gin.Context) {
	q, err := listing.ParseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	customers, err := h.profileRepository.ListCustomers()
	if err != nil {
		log.Printf("ListCustomers: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load customers",
		})
		return
	}

	filtered := listing.Filter(customers, q, customerSearchFields, customerCreatedAt)
	listing.Sort(filtered, q, customerSortKeys)

	c.JSON(http.StatusOK, gin.H{
		"customers": filtered,
		"total":     len(filtered),
	})
}

// GetCustomer handles GET /api/v1/admin/customers/:email
func (h *AdminHandler) GetCustomer(c *gin.Context) {
	emailAddr, err := validator.ValidateEmail(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_email",
			Message: err.Error(),
		})
		return
	}

	customer, err := h.profileRepository.GetCustomerByEmail(emailAddr)
	if err != nil {
		log.Printf("GetCustomer: failed for %s: %v", emailAddr, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to load customer",
		})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Customer not found",
		})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListAdmins handles GET /api/v1/admin/admins
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.profileRepository.ListAdmins()
	if err != nil {
		log.Printf("ListAdmins: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load admins",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admins": admins,
		"total":  len(admins),
	})
}

// InviteAdminRequest represents the admin invitation body
type InviteAdminRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// InviteAdmin handles POST /api/v1/admin/admins. The invited person gets
// an admin profile immediately and signs in through the normal OTP flow.
func (h *AdminHandler) InviteAdmin(c *gin.Context) {
	var req InviteAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	emailAddr, err := validator.ValidateEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_email",
			Message: err.Error(),
		})
		return
	}

	profile, err := h.profileRepository.Create(req.Name, emailAddr, req.PhoneNumber, models.RoleAdmin)
	if err != nil {
		if err == database.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_taken",
				Message: "An account with this email already exists",
				Code:    "DUPLICATE_EMAIL",
			})
			return
		}
		log.Printf("InviteAdmin: failed to create profile for %s: %v", emailAddr, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "invite_failed",
			Message: "Failed to create admin account",
		})
		return
	}

	actor := h.actor(c)
	if err := h.mailer.SendAdminInvite(emailAddr, actor.Name, h.portalURL); err != nil {
		log.Printf("InviteAdmin: failed to email invite to %s: %v", emailAddr, err)
	}
	if err := h.activityService.LogAdminInvited(actor, emailAddr); err != nil {
		log.Printf("InviteAdmin: failed to write activity log: %v", err)
	}

	c.JSON(http.StatusCreated, profile)
}

// ActivityLogs handles GET /api/v1/admin/activity-logs
func (h *AdminHandler) ActivityLogs(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid page",
			})
			return
		}
		page = parsed
	}

	limit := listing.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid limit",
			})
			return
		}
		if parsed > listing.MaxLimit {
			parsed = listing.MaxLimit
		}
		limit = parsed
	}

	logs, total, err := h.activityService.List(limit, (page-1)*limit)
	if err != nil {
		log.Printf("ActivityLogs: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to load activity logs",
		})
		return
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"activity_logs": logs,
		"pagination": listing.Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// DeleteVendor handles DELETE /api/v1/admin/vendors/:id. The vendor
// profile and everything attached to it go in one transaction.
func (h *AdminHandler) DeleteVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid vendor ID",
		})
		return
	}

	profile, err := h.profileRepository.GetByID(id)
	if err != nil {
		log.Printf("DeleteVendor: failed to load %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to load vendor",
		})
		return
	}
	if profile == nil || profile.Role != models.RoleVendor {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Vendor not found",
		})
		return
	}

	if err := h.profileRepository.DeleteCascade(id); err != nil {
		log.Printf("DeleteVendor: cascade failed for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete vendor",
		})
		return
	}

	if err := h.activityService.LogVendorDeleted(h.actor(c), id, profile.Name); err != nil {
		log.Printf("DeleteVendor: failed to write activity log: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vendor deleted",
	})
}

// DeleteCustomer handles DELETE /api/v1/admin/customers/:email
func (h *AdminHandler) DeleteCustomer(c *gin.Context) {
	emailAddr, err := validator.ValidateEmail(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_email",
			Message: err.Error(),
		})
		return
	}

	profile, err := h.profileRepository.GetByEmail(emailAddr)
	if err != nil {
		log.Printf("DeleteCustomer: failed to load %s: %v", emailAddr, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to load customer",
		})
		return
	}
	if profile == nil || profile.Role != models.RoleCustomer {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Customer not found",
		})
		return
	}

	if err := h.profileRepository.DeleteCascade(profile.ID); err != nil {
		log.Printf("DeleteCustomer: cascade failed for %s: %v", profile.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete customer",
		})
		return
	}

	if err := h.activityService.LogCustomerDeleted(h.actor(c), profile.ID, profile.Name); err != nil {
		log.Printf("DeleteCustomer: failed to write activity log: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Customer deleted",
	})
}
