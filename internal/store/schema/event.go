package schema

// Event represents one row of the append-only events ledger.
//
// The table itself is created with a fixed DDL (see store.Open) so the file
// layout stays compatible with existing databases; this model only maps the
// columns for GORM queries and upserts.
type Event struct {
	// EventType tags the kind of entry (sale, transfer)
	EventType string `gorm:"column:event_type"`
	// FromWallet is the sender address
	FromWallet string `gorm:"column:from_wallet"`
	// ToWallet is the recipient address
	ToWallet string `gorm:"column:to_wallet"`
	// TokenID is the contract-scoped token number
	TokenID int64 `gorm:"column:token_id"`
	// Amount is the persisted sale value in native currency
	Amount float64 `gorm:"column:amount"`
	// TxDate is the block timestamp, RFC3339 UTC
	TxDate string `gorm:"column:tx_date"`
	// Tx is the transaction hash; (tx, log_index) is the idempotency key
	Tx string `gorm:"column:tx"`
	// LogIndex is the log position within the transaction
	LogIndex uint `gorm:"column:log_index"`
	// Platform identifies the marketplace that produced the sale
	Platform string `gorm:"column:platform"`
}

// TableName specifies the table name for the Event model
func (Event) TableName() string {
	return "events"
}
