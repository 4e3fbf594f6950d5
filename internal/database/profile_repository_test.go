package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

func TestCreateProfile(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewProfileRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(sqlmock.AnyArg(), "Asha Varma", "asha@example.com", "9812345678",
				models.RoleCustomer, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		profile, err := repo.Create("Asha Varma", "asha@example.com", "9812345678", models.RoleCustomer)
		require.NoError(t, err)
		assert.NotNil(t, profile)
		assert.NotEqual(t, uuid.Nil, profile.ID)
		assert.Equal(t, "asha@example.com", profile.Email)
		assert.Equal(t, models.RoleCustomer, profile.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(sqlmock.AnyArg(), "Asha Varma", "asha@example.com", "9812345678",
				models.RoleCustomer, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(&pq.Error{Code: "23505"})

		profile, err := repo.Create("Asha Varma", "asha@example.com", "9812345678", models.RoleCustomer)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Nil(t, profile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(sqlmock.AnyArg(), "Asha Varma", "asha@example.com", "9812345678",
				models.RoleCustomer, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		profile, err := repo.Create("Asha Varma", "asha@example.com", "9812345678", models.RoleCustomer)
		assert.Error(t, err)
		assert.Nil(t, profile)
		assert.Contains(t, err.Error(), "failed to create profile")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetProfileByEmail(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewProfileRepository(mockDB)

	profileColumns := []string{"id", "name", "email", "phone_number", "role", "created_at", "updated_at"}

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email`).
			WithArgs("asha@example.com").
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(id.String(), "Asha Varma", "asha@example.com", "9812345678", "customer", now, now))

		profile, err := repo.GetByEmail("asha@example.com")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, id, profile.ID)
		assert.Equal(t, models.RoleCustomer, profile.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		profile, err := repo.GetByEmail("missing@example.com")
		require.NoError(t, err)
		assert.Nil(t, profile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email`).
			WithArgs("asha@example.com").
			WillReturnError(fmt.Errorf("database error"))

		profile, err := repo.GetByEmail("asha@example.com")
		assert.Error(t, err)
		assert.Nil(t, profile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListCustomers(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewProfileRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM profiles p`).
			WithArgs(models.RoleCustomer).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone_number", "created_at", "warranty_count"}).
				AddRow(uuid.New().String(), "Asha Varma", "asha@example.com", "9812345678", now, 3).
				AddRow(uuid.New().String(), "Bharat Singh", "bharat@example.com", "9823456789", now, 0))

		customers, err := repo.ListCustomers()
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, 3, customers[0].WarrantyCount)
		assert.Equal(t, "Bharat Singh", customers[1].Name)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Result", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM profiles p`).
			WithArgs(models.RoleCustomer).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone_number", "created_at", "warranty_count"}))

		customers, err := repo.ListCustomers()
		require.NoError(t, err)
		assert.Len(t, customers, 0)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountByRole(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewProfileRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles WHERE role`).
			WithArgs(models.RoleCustomer).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		count, err := repo.CountByRole(models.RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, 42, count)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles WHERE role`).
			WithArgs(models.RoleAdmin).
			WillReturnError(fmt.Errorf("database error"))

		count, err := repo.CountByRole(models.RoleAdmin)
		assert.Error(t, err)
		assert.Equal(t, 0, count)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteCascade(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewProfileRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM otp_codes WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM warranties WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM manpower WHERE vendor_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM vendor_details WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM vendor_verifications WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM profiles WHERE id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteCascade(id)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Profile Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM otp_codes WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM warranties WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM manpower WHERE vendor_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM vendor_details WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM vendor_verifications WHERE user_id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM profiles WHERE id`).
			WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteCascade(id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "profile not found")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cascade Step Fails", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM otp_codes WHERE user_id`).
			WithArgs(id).WillReturnError(fmt.Errorf("database error"))
		mock.ExpectRollback()

		err := repo.DeleteCascade(id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to cascade delete")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
