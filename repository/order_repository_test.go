package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"eduverse-payments/models"
	"eduverse-payments/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func orderRows(order *models.Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"order_id", "user_id", "item_type", "item_id", "amount", "currency",
		"status", "benefits_applied", "payment_session_id", "last_webhook_payload",
		"created_at", "updated_at",
	}).AddRow(
		order.OrderID, order.UserID, order.ItemType, order.ItemID, order.Amount,
		order.Currency, order.Status, order.BenefitsApplied, order.PaymentSessionID,
		order.LastWebhookPayload, order.CreatedAt, order.UpdatedAt,
	)
}

func TestCreateOrder_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"benefits_applied"}).AddRow(false))
	mock.ExpectCommit()

	err := repo.CreateOrder(context.Background(), &models.Order{
		OrderID:  "ord_abc",
		UserID:   "user-1",
		ItemType: models.ItemTypeCoinBundle,
		ItemID:   "coins_550",
		Amount:   19900,
		Currency: "INR",
		Status:   models.StatusPending,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	order, err := repo.GetOrderByID(context.Background(), "ord_missing")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestGetOrderByID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(orderRows(&models.Order{
			OrderID:   "ord_abc",
			UserID:    "user-1",
			ItemType:  models.ItemTypeCoinBundle,
			ItemID:    "coins_550",
			Amount:    19900,
			Currency:  "INR",
			Status:    models.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}))

	order, err := repo.GetOrderByID(context.Background(), "ord_abc")
	assert.NoError(t, err)
	assert.Equal(t, "ord_abc", order.OrderID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.BenefitsApplied)
}

func TestFinalizePaid_ClaimsAndApplies(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied := false
	claimed, err := repo.FinalizePaid(context.Background(), "ord_abc", nil, func(tx *gorm.DB) error {
		applied = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizePaid_AlreadyClaimed(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied := false
	claimed, err := repo.FinalizePaid(context.Background(), "ord_abc", nil, func(tx *gorm.DB) error {
		applied = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, claimed)
	assert.False(t, applied, "loser must not apply benefits")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizePaid_ApplyErrorRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	claimed, err := repo.FinalizePaid(context.Background(), "ord_abc", nil, func(tx *gorm.DB) error {
		return assert.AnError
	})
	assert.Error(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizePaid_WritesPayloadWithClaim(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`"benefits_applied"=$1,"last_webhook_payload"=$2,"status"=$3`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payload := `{"data":{"order":{"order_id":"ord_abc","order_status":"PAID"}}}`
	claimed, err := repo.FinalizePaid(context.Background(), "ord_abc", &payload, func(tx *gorm.DB) error {
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeWebhookStatus_LegalTransition(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(orderRows(&models.Order{
			OrderID: "ord_abc", UserID: "user-1",
			ItemType: models.ItemTypeCoinBundle, ItemID: "coins_550",
			Amount: 19900, Currency: "INR",
			Status: models.StatusPending, CreatedAt: now, UpdatedAt: now,
		}))

	// PENDING -> EXPIRED is a forward move, so the status column is written.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`"last_webhook_payload"=$1,"status"=$2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MergeWebhookStatus(context.Background(), "ord_abc", models.StatusExpired, `{"order_status":"EXPIRED"}`)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeWebhookStatus_TerminalStatusKept(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(orderRows(&models.Order{
			OrderID: "ord_abc", UserID: "user-1",
			ItemType: models.ItemTypeCoinBundle, ItemID: "coins_550",
			Amount: 19900, Currency: "INR",
			Status: models.StatusPaid, BenefitsApplied: true,
			CreatedAt: now, UpdatedAt: now,
		}))

	// A paid order never moves backwards; only the payload is refreshed.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`"last_webhook_payload"=$1,"updated_at"=$2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MergeWebhookStatus(context.Background(), "ord_abc", models.StatusFailed, `{"order_status":"FAILED"}`)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeWebhookStatus_LateWebhookLosesToFinalize(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(orderRows(&models.Order{
			OrderID: "ord_abc", UserID: "user-1",
			ItemType: models.ItemTypeCoinBundle, ItemID: "coins_550",
			Amount: 19900, Currency: "INR",
			Status: models.StatusPending, CreatedAt: now, UpdatedAt: now,
		}))

	// The read saw PENDING, but a concurrent finalize commits PAID before
	// the merge writes. The status guard makes the update match nothing,
	// leaving the paid row intact.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE order_id = $4 AND status = $5`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MergeWebhookStatus(context.Background(), "ord_abc", models.StatusFailed, `{"order_status":"FAILED"}`)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeWebhookStatus_UnknownOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepo(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := repo.MergeWebhookStatus(context.Background(), "ord_missing", models.StatusFailed, `{}`)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}
