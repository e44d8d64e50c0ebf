package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one linked financial account as reported by the aggregation API.
type Account struct {
	ID                string          `gorm:"column:id;primaryKey" json:"id"`
	Name              string          `gorm:"column:name" json:"name"`
	Type              *string         `gorm:"column:type" json:"type"`
	Subtype           *string         `gorm:"column:subtype" json:"subtype"`
	CurrentBalance    decimal.Decimal `gorm:"column:current_balance;type:numeric" json:"current_balance"`
	DisplayBalance    decimal.Decimal `gorm:"column:display_balance;type:numeric" json:"display_balance"`
	Institution       *string         `gorm:"column:institution" json:"institution"`
	IsHidden          bool            `gorm:"column:is_hidden" json:"is_hidden"`
	IsAsset           bool            `gorm:"column:is_asset" json:"is_asset"`
	IncludeInNetWorth bool            `gorm:"column:include_in_net_worth" json:"include_in_net_worth"`
	LastUpdated       *time.Time      `gorm:"column:last_updated" json:"last_updated"`
	SyncedAt          time.Time       `gorm:"column:synced_at" json:"synced_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// BalancePoint is one daily balance snapshot for an account.
type BalancePoint struct {
	AccountID string          `gorm:"column:account_id;primaryKey" json:"account_id"`
	Date      time.Time       `gorm:"column:date;primaryKey;type:date" json:"date"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric" json:"balance"`
}

// TableName specifies the table name for GORM
func (BalancePoint) TableName() string {
	return "account_history"
}
