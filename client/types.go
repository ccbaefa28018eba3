package client

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Account describes one bank account owned by or shared with a customer.
type Account struct {
	AccountNumber   string          `json:"accountNumber"`
	CustomerID      string          `json:"customerId"`
	OwnerCustomerID string          `json:"ownerCustomerId"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	Available       decimal.Decimal `json:"available"`
	Balance         decimal.Decimal `json:"balance"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	DefaultAccount  bool            `json:"defaultAccount"`
}

// accountsResponse is the list container returned by the accounts endpoint.
type accountsResponse struct {
	AvailableItems int       `json:"availableItems"`
	Items          []Account `json:"items"`
}

func (r *accountsResponse) validate() error {
	if r.Items == nil {
		return errors.New("accounts response has no items")
	}
	return nil
}

// CardDetails is attached to card transactions.
type CardDetails struct {
	CardNumber                  string          `json:"cardNumber"`
	CurrencyAmount              decimal.Decimal `json:"currencyAmount"`
	CurrencyRate                decimal.Decimal `json:"currencyRate"`
	MerchantCategoryCode        string          `json:"merchantCategoryCode"`
	MerchantCategoryDescription string          `json:"merchantCategoryDescription"`
	MerchantCity                string          `json:"merchantCity"`
	MerchantName                string          `json:"merchantName"`
	OriginalCurrencyCode        string          `json:"originalCurrencyCode"`
	PurchaseDate                time.Time       `json:"purchaseDate"`
	TransactionID               string          `json:"transactionId"`
}

// Transaction is one booked or reserved movement on an account.
type Transaction struct {
	TransactionID               string          `json:"transactionId"`
	AccountingDate              time.Time       `json:"accountingDate"`
	InterestDate                time.Time       `json:"interestDate"`
	OtherAccountNumber          *string         `json:"otherAccountNumber,omitempty"`
	OtherAccountNumberSpecified bool            `json:"otherAccountNumberSpecified"`
	Amount                      decimal.Decimal `json:"amount"`
	Text                        string          `json:"text"`
	TransactionType             string          `json:"transactionType"`
	TransactionTypeCode         int             `json:"transactionTypeCode"`
	TransactionTypeText         string          `json:"transactionTypeText"`
	IsReservation               bool            `json:"isReservation"`
	ReservationType             *string         `json:"reservationType,omitempty"`
	Source                      *int            `json:"source,omitempty"`
	CardDetails                 *CardDetails    `json:"cardDetails,omitempty"`
	CardDetailsSpecified        bool            `json:"cardDetailsSpecified"`
}

// TransactionResponse is one page of transactions.
type TransactionResponse struct {
	AvailableItems int           `json:"availableItems"`
	Items          []Transaction `json:"items"`
}

func (r *TransactionResponse) validate() error {
	if r.Items == nil {
		return errors.New("transactions response has no items")
	}
	return nil
}

// TransferRequest is the payload for moving money between two accounts.
type TransferRequest struct {
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Message     string          `json:"message"`
	Amount      decimal.Decimal `json:"amount"`
}

// MarshalJSON writes Amount as a JSON number rather than a quoted string.
func (r TransferRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FromAccount string      `json:"fromAccount"`
		ToAccount   string      `json:"toAccount"`
		Message     string      `json:"message"`
		Amount      json.Number `json:"amount"`
	}{
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Message:     r.Message,
		Amount:      json.Number(r.Amount.String()),
	})
}

// TransferResponse acknowledges a transfer. IsError set means the bank rejected it.
type TransferResponse struct {
	ErrorType    *int    `json:"errorType,omitempty"`
	IsError      bool    `json:"isError"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}

// UnmarshalJSON requires isError to be present.
func (r *TransferResponse) UnmarshalJSON(data []byte) error {
	var aux struct {
		ErrorType    *int    `json:"errorType"`
		IsError      *bool   `json:"isError"`
		ErrorMessage *string `json:"errorMessage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.IsError == nil {
		return errors.New("transfer response has no isError field")
	}
	r.ErrorType = aux.ErrorType
	r.IsError = *aux.IsError
	r.ErrorMessage = aux.ErrorMessage
	return nil
}

// tokenResponse is the wire shape of the identity server reply; every field is required.
type tokenResponse struct {
	AccessToken *string `json:"access_token"`
	ExpiresIn   *int64  `json:"expires_in"`
	TokenType   *string `json:"token_type"`
}

func (r *tokenResponse) validate() error {
	if r.AccessToken == nil || *r.AccessToken == "" || r.ExpiresIn == nil || r.TokenType == nil {
		return errors.New("token response is missing required fields")
	}
	return nil
}
