package repository

import (
	"time"

	"eduverse-payments/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BenefitRepository applies purchase side effects. Every method takes the
// finalizing transaction handle so a transaction retry cannot double-credit.
type BenefitRepository interface {
	CreditCoins(tx *gorm.DB, userID string, amount int64) error
	ExtendSubscription(tx *gorm.DB, userID, plan string, duration time.Duration) error
	UnlockProduct(tx *gorm.DB, userID, productID, orderID string) error
}

type gormBenefitRepo struct{}

func NewGormBenefitRepo() BenefitRepository {
	return &gormBenefitRepo{}
}

func (r *gormBenefitRepo) CreditCoins(tx *gorm.DB, userID string, amount int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("coin_wallets.balance + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&models.CoinWallet{
		UserID:  userID,
		Balance: amount,
	}).Error
}

func (r *gormBenefitRepo) ExtendSubscription(tx *gorm.DB, userID, plan string, duration time.Duration) error {
	now := time.Now()

	var current models.UserSubscription
	err := tx.Where("user_id = ?", userID).First(&current).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	// Extend from whichever is later: now or the remaining term.
	base := now
	if err == nil && current.ExpiresAt.After(now) {
		base = current.ExpiresAt
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"plan":       plan,
			"expires_at": base.Add(duration),
			"updated_at": now,
		}),
	}).Create(&models.UserSubscription{
		UserID:    userID,
		Plan:      plan,
		ExpiresAt: base.Add(duration),
	}).Error
}

func (r *gormBenefitRepo) UnlockProduct(tx *gorm.DB, userID, productID, orderID string) error {
	// Unique (user_id, product_id) makes re-application a no-op.
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProductUnlock{
		UserID:    userID,
		ProductID: productID,
		OrderID:   orderID,
	}).Error
}
