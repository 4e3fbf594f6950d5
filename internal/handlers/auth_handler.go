package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/middleware"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
	"github.com/shieldtech/warranty-portal-backend/internal/utils"
	"github.com/shieldtech/warranty-portal-backend/pkg/email"
	"github.com/shieldtech/warranty-portal-backend/pkg/jwt"
	"github.com/shieldtech/warranty-portal-backend/pkg/validator"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService          *jwt.Service
	otpService          *services.OTPService
	rateLimitService    *services.RateLimitService
	verificationService *services.VerificationService
	phoneValidator      *validator.PhoneValidator
	profileRepository   *database.ProfileRepository
	vendorRepository    *database.VendorRepository
	manpowerRepository  *database.ManpowerRepository
	mailer              email.Mailer
	config              *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	otpService *services.OTPService,
	rateLimitService *services.RateLimitService,
	verificationService *services.VerificationService,
	phoneValidator *validator.PhoneValidator,
	profileRepository *database.ProfileRepository,
	vendorRepository *database.VendorRepository,
	manpowerRepository *database.ManpowerRepository,
	mailer email.Mailer,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		jwtService:          jwtService,
		otpService:          otpService,
		rateLimitService:    rateLimitService,
		verificationService: verificationService,
		phoneValidator:      phoneValidator,
		profileRepository:   profileRepository,
		vendorRepository:    vendorRepository,
		manpowerRepository:  manpowerRepository,
		mailer:              mailer,
		config:              cfg,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ManpowerEntry is an installer supplied inline during vendor registration
type ManpowerEntry struct {
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	ApplicatorType string `json:"applicator_type"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name        string          `json:"name" binding:"required"`
	Email       string          `json:"email" binding:"required"`
	PhoneNumber string          `json:"phone_number" binding:"required"`
	Role        string          `json:"role" binding:"required"`
	StoreName   string          `json:"store_name"`
	Address     string          `json:"address"`
	State       string          `json:"state"`
	City        string          `json:"city"`
	Pincode     string          `json:"pincode"`
	Manpower    []ManpowerEntry `json:"manpower"`
}

// AuthStartResponse is returned by register and login: the next step is
// always OTP verification.
type AuthStartResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	UserID      uuid.UUID `json:"user_id"`
	RequiresOTP bool      `json:"requires_otp"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyOTPRequest represents the OTP verification request body
type VerifyOTPRequest struct {
	UserID string `json:"user_id" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

// VerifyOTPResponse represents the response after verifying OTP. For
// vendors that are still awaiting approval the token and user are null.
type VerifyOTPResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Token     *string         `json:"token"`
	ExpiresIn int             `json:"expires_in_seconds,omitempty"`
	User      *models.Profile `json:"user"`
}

// ResendOTPRequest represents the resend request body
type ResendOTPRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

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

	phone, err := h.phoneValidator.Validate(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_role",
			Message: err.Error(),
		})
		return
	}

	// Admin registration is restricted to the configured admin inbox.
	// Additional admins get profiles through the invite endpoint.
	if role == models.RoleAdmin && emailAddr != h.config.Admin.Email {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "This email is not authorized for admin registration",
			Code:    "ADMIN_NOT_WHITELISTED",
		})
		return
	}

	var pincode string
	if role == models.RoleVendor {
		if req.StoreName == "" || req.Address == "" || req.State == "" || req.City == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Vendor registration requires store name, address, state and city",
			})
			return
		}
		pincode, err = validator.ValidatePincode(req.Pincode)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_pincode",
				Message: err.Error(),
			})
			return
		}
	}

	profile, err := h.profileRepository.Create(req.Name, emailAddr, phone, role)
	if err != nil {
		if err == database.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_taken",
				Message: "An account with this email already exists",
				Code:    "DUPLICATE_EMAIL",
			})
			return
		}
		log.Printf("Register: failed to create profile for %s: %v", emailAddr, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "registration_failed",
			Message: "Failed to create account",
		})
		return
	}

	if role == models.RoleVendor {
		if err := h.verificationService.Enroll(profile, req.StoreName, req.Address, req.State, req.City, pincode); err != nil {
			log.Printf("Register: failed to enroll vendor %s: %v", profile.ID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "registration_failed",
				Message: "Failed to create vendor records",
			})
			return
		}

		for _, entry := range req.Manpower {
			if entry.Name == "" || entry.PhoneNumber == "" {
				continue
			}
			applicatorType, err := models.ParseApplicatorType(entry.ApplicatorType)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_applicator_type",
					Message: err.Error(),
				})
				return
			}
			mpPhone, err := h.phoneValidator.Validate(entry.PhoneNumber)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_phone",
					Message: "Installer " + entry.Name + ": " + err.Error(),
				})
				return
			}
			if _, err := h.manpowerRepository.Create(profile.ID, entry.Name, mpPhone, applicatorType); err != nil {
				log.Printf("Register: failed to create installer for vendor %s: %v", profile.ID, err)
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "registration_failed",
					Message: "Failed to save installer records",
				})
				return
			}
		}
	}

	h.issueOTP(c, profile, "Account created. We sent a login code to your email.")
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

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

	profile, err := h.profileRepository.GetByEmail(emailAddr)
	if err != nil {
		log.Printf("Login: failed to look up %s: %v", emailAddr, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "login_failed",
			Message: "Failed to look up account",
		})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "account_not_found",
			Message: "No account exists for this email. Please register first.",
			Code:    "ACCOUNT_NOT_FOUND",
		})
		return
	}

	if profile.Role == models.RoleVendor {
		verification, err := h.vendorRepository.GetVerificationByUserID(profile.ID)
		if err != nil {
			log.Printf("Login: failed to load verification for %s: %v", profile.ID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "login_failed",
				Message: "Failed to look up account",
			})
			return
		}
		if verification == nil || !verification.IsVerified {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "vendor_not_verified",
				Message: "Your vendor account is awaiting approval",
				Code:    "VENDOR_NOT_VERIFIED",
			})
			return
		}
	}

	h.issueOTP(c, profile, "We sent a login code to your email.")
}

// VerifyOTP handles POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid user ID",
		})
		return
	}

	valid, err := h.otpService.ValidateOTP(userID, req.OTP)
	if err != nil {
		switch err {
		case services.ErrOTPInvalid, services.ErrOTPExpired, services.ErrNoOTPFound:
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_otp",
				Message: "Invalid or expired OTP",
				Code:    "INVALID_OTP",
			})
		default:
			log.Printf("VerifyOTP: validation failed for %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "verification_failed",
				Message: "Failed to verify OTP",
			})
		}
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_otp",
			Message: "Invalid or expired OTP",
			Code:    "INVALID_OTP",
		})
		return
	}

	profile, err := h.profileRepository.GetByID(userID)
	if err != nil || profile == nil {
		log.Printf("VerifyOTP: failed to load profile %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "verification_failed",
			Message: "Failed to load account",
		})
		return
	}

	// A vendor whose approval is still pending can prove their identity
	// but does not get a session yet.
	if profile.Role == models.RoleVendor {
		verification, err := h.vendorRepository.GetVerificationByUserID(profile.ID)
		if err != nil {
			log.Printf("VerifyOTP: failed to load verification for %s: %v", profile.ID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "verification_failed",
				Message: "Failed to load account",
			})
			return
		}
		if verification == nil || !verification.IsVerified {
			c.JSON(http.StatusOK, VerifyOTPResponse{
				Success: true,
				Message: "Your vendor account is awaiting approval. We will email you once it is reviewed.",
				Token:   nil,
				User:    nil,
			})
			return
		}
	}

	token, err := h.jwtService.GenerateToken(profile.ID, profile.Email, string(profile.Role))
	if err != nil {
		log.Printf("VerifyOTP: failed to sign token for %s: %v", profile.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "verification_failed",
			Message: "Failed to create session",
		})
		return
	}

	c.JSON(http.StatusOK, VerifyOTPResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     &token,
		ExpiresIn: int(h.jwtService.ExpiresIn().Seconds()),
		User:      profile,
	})
}

// ResendOTP handles POST /api/v1/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid user ID",
		})
		return
	}

	profile, err := h.profileRepository.GetByID(userID)
	if err != nil {
		log.Printf("ResendOTP: failed to load profile %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "resend_failed",
			Message: "Failed to look up account",
		})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "account_not_found",
			Message: "No account exists for this user",
			Code:    "ACCOUNT_NOT_FOUND",
		})
		return
	}

	h.issueOTP(c, profile, "We sent a new login code to your email.")
}

// MeResponse represents the authenticated identity
type MeResponse struct {
	User               *models.Profile `json:"user"`
	VerificationStatus string          `json:"verification_status,omitempty"`
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	profile, err := h.profileRepository.GetByID(userCtx.UserID)
	if err != nil {
		log.Printf("Me: failed to load profile %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to load account",
		})
		return
	}
	if profile == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Account no longer exists",
		})
		return
	}

	resp := MeResponse{User: profile}

	if profile.Role == models.RoleVendor {
		verification, err := h.vendorRepository.GetVerificationByUserID(profile.ID)
		if err != nil {
			log.Printf("Me: failed to load verification for %s: %v", profile.ID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "lookup_failed",
				Message: "Failed to load account",
			})
			return
		}
		if verification != nil {
			resp.VerificationStatus = verification.Status()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// issueOTP applies rate limits, generates a code, emails it, and writes
// the standard auth-start response.
func (h *AuthHandler) issueOTP(c *gin.Context, profile *models.Profile, message string) {
	clientIP := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	if err := h.rateLimitService.CheckOTPRateLimit(profile.Email, clientIP); err != nil {
		if rateLimitErr, ok := err.(*services.RateLimitError); ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     rateLimitErr.Message,
				"retry_after": rateLimitErr.RetryAfter,
				"type":        rateLimitErr.Type,
			})
			return
		}
		log.Printf("issueOTP: rate limit check failed for %s: %v", profile.Email, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "rate_limit_check_failed",
			Message: "Failed to check rate limit",
		})
		return
	}

	otp, err := h.otpService.GenerateOTP(profile.ID, clientIP, userAgent)
	if err != nil {
		log.Printf("issueOTP: failed to generate OTP for %s: %v", profile.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "otp_generation_failed",
			Message: "Failed to generate OTP",
		})
		return
	}

	if err := h.rateLimitService.RecordOTPRequest(profile.Email, clientIP); err != nil {
		c.Error(err)
	}

	// The account state is already committed, so a failed email must not
	// fail the request. The user can ask for a new code via resend-otp.
	expiryMinutes := int(h.otpService.Expiry().Minutes())
	if err := h.mailer.SendOTP(profile.Email, profile.Name, otp, expiryMinutes); err != nil {
		log.Printf("issueOTP: failed to email OTP to %s: %v", profile.Email, err)
	}

	c.JSON(http.StatusOK, AuthStartResponse{
		Success:     true,
		Message:     message,
		UserID:      profile.ID,
		RequiresOTP: true,
	})
}
