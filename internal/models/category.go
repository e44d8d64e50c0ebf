package models

// Category is a transaction category with its parent group.
type Category struct {
	ID        string  `gorm:"column:id;primaryKey" json:"id"`
	Name      string  `gorm:"column:name" json:"name"`
	GroupID   *string `gorm:"column:group_id" json:"group_id"`
	GroupName *string `gorm:"column:group_name" json:"group_name"`
	GroupType *string `gorm:"column:group_type" json:"group_type"`
}

// TableName specifies the table name for GORM
func (Category) TableName() string {
	return "categories"
}
