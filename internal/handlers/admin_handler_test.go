package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
)

var vendorRecordColumns = []string{
	"id", "name", "email", "phone_number",
	"store_name", "address", "state", "city", "pincode",
	"is_verified", "verified_at", "rejection_reason",
	"created_at",
}

func setupAdminRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockDB, mock := newMockDatabase(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	profileRepo := database.NewProfileRepository(mockDB)
	vendorRepo := database.NewVendorRepository(mockDB)
	manpowerRepo := database.NewManpowerRepository(mockDB)
	activityService := services.NewActivityService(database.NewActivityLogRepository(mockDB))
	warrantyService := services.NewWarrantyService(
		database.NewWarrantyRepository(mockDB),
		manpowerRepo,
		vendorRepo,
		activityService,
		logger,
	)
	verificationService := services.NewVerificationService(
		vendorRepo,
		profileRepo,
		activityService,
		&stubMailer{},
		logger,
		"admin@shieldtech.in",
		"http://localhost:8080",
		"http://localhost:3000",
	)

	handler := NewAdminHandler(
		warrantyService,
		verificationService,
		activityService,
		profileRepo,
		vendorRepo,
		manpowerRepo,
		&stubMailer{},
		"http://localhost:3000",
	)

	router := gin.New()
	router.GET("/admin/vendors", handler.ListVendors)
	router.GET("/admin/customers", handler.ListCustomers)
	router.GET("/admin/warranties/export", handler.ExportWarranties)

	return router, mock
}

func TestListVendorsHandler(t *testing.T) {
	t.Run("Full Set Without Pagination", func(t *testing.T) {
		router, mock := setupAdminRouter(t)
		now := time.Now()

		rows := sqlmock.NewRows(vendorRecordColumns)
		for i := 1; i <= 35; i++ {
			rows.AddRow(uuid.New().String(), fmt.Sprintf("Vendor %02d", i),
				fmt.Sprintf("vendor%02d@example.com", i), "9812345678",
				"Shine Interiors", "12 MG Road", "Maharashtra", "Pune", "411001",
				true, now, nil, now)
		}
		mock.ExpectQuery(`SELECT (.+) FROM profiles p`).
			WillReturnRows(rows)

		req := httptest.NewRequest("GET", "/admin/vendors", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":35`)
		assert.Contains(t, w.Body.String(), "vendor35@example.com")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListCustomersHandler(t *testing.T) {
	t.Run("Full Set Without Pagination", func(t *testing.T) {
		router, mock := setupAdminRouter(t)
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "name", "email", "phone_number", "created_at", "warranty_count",
		})
		for i := 1; i <= 35; i++ {
			rows.AddRow(uuid.New().String(), fmt.Sprintf("Customer %02d", i),
				fmt.Sprintf("customer%02d@example.com", i), "9812345678", now, i)
		}
		mock.ExpectQuery(`SELECT (.+) FROM profiles p`).
			WithArgs(models.RoleCustomer).
			WillReturnRows(rows)

		req := httptest.NewRequest("GET", "/admin/customers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":35`)
		assert.Contains(t, w.Body.String(), "customer35@example.com")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExportWarrantiesHandler(t *testing.T) {
	t.Run("Product Details Become Named Columns", func(t *testing.T) {
		router, mock := setupAdminRouter(t)

		first := warrantyTestRow(uuid.New(), uuid.New(), models.WarrantyPending)
		first[16] = []byte(`{"lot_number":"L1","photos":["a.jpg"]}`)
		second := warrantyTestRow(uuid.New(), uuid.New(), models.WarrantyValidated)
		second[16] = []byte(`{"install_area":"full"}`)

		mock.ExpectQuery(`SELECT (.+) FROM warranties`).
			WillReturnRows(sqlmock.NewRows(warrantyTestColumns).
				AddRow(first...).
				AddRow(second...))

		req := httptest.NewRequest("GET", "/admin/warranties/export", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

		records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		header := records[0]
		assert.NotContains(t, header, "product_details")

		cols := map[string]int{}
		for i, name := range header {
			cols[name] = i
		}
		require.Contains(t, cols, "install_area")
		require.Contains(t, cols, "lot_number")
		require.Contains(t, cols, "photos")

		assert.Equal(t, "L1", records[1][cols["lot_number"]])
		assert.Equal(t, `["a.jpg"]`, records[1][cols["photos"]])
		assert.Equal(t, "", records[1][cols["install_area"]])

		assert.Equal(t, "full", records[2][cols["install_area"]])
		assert.Equal(t, "", records[2][cols["lot_number"]])
		assert.Equal(t, "", records[2][cols["photos"]])

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
