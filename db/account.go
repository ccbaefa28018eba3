package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a snapshot of one bank account taken by `sbanken accounts refresh`.
type Account struct {
	AccountNumber  string          `gorm:"primaryKey" json:"accountNumber"`
	UserID         string          `gorm:"index" json:"userId"`
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	Available      decimal.Decimal `gorm:"type:text" json:"available"`
	Balance        decimal.Decimal `gorm:"type:text" json:"balance"`
	CreditLimit    decimal.Decimal `gorm:"type:text" json:"creditLimit"`
	DefaultAccount bool            `json:"defaultAccount"`
	RefreshedAt    time.Time       `json:"refreshedAt"`
}

// Transaction is a snapshot of one transaction belonging to an Account.
// Data keeps the raw JSON of the record as it came from the API.
type Transaction struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	AccountNumber  string          `gorm:"index" json:"accountNumber"`
	TransactionID  string          `json:"transactionId"`
	AccountingDate time.Time       `gorm:"index" json:"accountingDate"`
	Amount         decimal.Decimal `gorm:"type:text" json:"amount"`
	Text           string          `json:"text"`
	Data           string          `json:"data"`
}
