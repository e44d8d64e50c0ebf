package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one ledger transaction. Remote timestamps are kept
// alongside SyncedAt so re-syncs can be audited.
type Transaction struct {
	ID              string          `gorm:"column:id;primaryKey" json:"id"`
	Date            time.Time       `gorm:"column:date;type:date" json:"date"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric" json:"amount"`
	MerchantName    *string         `gorm:"column:merchant_name" json:"merchant_name"`
	CategoryID      *string         `gorm:"column:category_id" json:"category_id"`
	CategoryName    *string         `gorm:"column:category_name" json:"category_name"`
	CategoryGroup   *string         `gorm:"column:category_group" json:"category_group"`
	AccountID       *string         `gorm:"column:account_id" json:"account_id"`
	AccountName     *string         `gorm:"column:account_name" json:"account_name"`
	IsPending       bool            `gorm:"column:is_pending" json:"is_pending"`
	IsRecurring     bool            `gorm:"column:is_recurring" json:"is_recurring"`
	Notes           *string         `gorm:"column:notes" json:"notes"`
	HideFromReports bool            `gorm:"column:hide_from_reports" json:"hide_from_reports"`
	CreatedAt       *time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time      `gorm:"column:updated_at" json:"updated_at"`
	SyncedAt        time.Time       `gorm:"column:synced_at" json:"synced_at"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}
