package schema

// Configuration stores single-row-per-key state such as the scan checkpoint.
type Configuration struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value"`
}

// TableName specifies the table name for the Configuration model
func (Configuration) TableName() string {
	return "configuration"
}
