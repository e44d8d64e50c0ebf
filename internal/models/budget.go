package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is one (category, month) budget row with the planned amount,
// actual spend, and their variance.
type Budget struct {
	CategoryID     string          `gorm:"column:category_id;primaryKey" json:"category_id"`
	Month          time.Time       `gorm:"column:month;primaryKey;type:date" json:"month"`
	BudgetedAmount decimal.Decimal `gorm:"column:budgeted_amount;type:numeric" json:"budgeted_amount"`
	ActualAmount   decimal.Decimal `gorm:"column:actual_amount;type:numeric" json:"actual_amount"`
	Variance       decimal.Decimal `gorm:"column:variance;type:numeric" json:"variance"`
}

// TableName specifies the table name for GORM
func (Budget) TableName() string {
	return "budgets"
}
