package validation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinThreads = 1
	MaxThreads = 20

	MinPageLength = 1
	MaxPageLength = 1000

	accountNumberLength = 11
)

func ValidateThreadCount(threads int) error {
	if threads < MinThreads || threads > MaxThreads {
		return fmt.Errorf("thread count must be between %d and %d, got %d", MinThreads, MaxThreads, threads)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateAccountNumber checks for the 11-digit Norwegian account number format.
func ValidateAccountNumber(number string) error {
	if len(number) != accountNumberLength {
		return fmt.Errorf("account number must have %d digits, got %q", accountNumberLength, number)
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return fmt.Errorf("account number must contain only digits, got %q", number)
		}
	}
	return nil
}

func ValidatePageLength(length int) error {
	if length < MinPageLength || length > MaxPageLength {
		return fmt.Errorf("page length must be between %d and %d, got %d", MinPageLength, MaxPageLength, length)
	}
	return nil
}

func ValidatePageIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("page index must not be negative, got %d", index)
	}
	return nil
}

// ValidateAmount requires a positive amount with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("amount must have at most two decimal places, got %s", amount.String())
	}
	return nil
}

// ValidateDateRange requires start to be before end when both are set.
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if !start.Before(end) {
		return fmt.Errorf("start date %s must be before end date %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}

func ValidateExportFormat(format string) error {
	switch format {
	case "json", "csv":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be one of: json, csv)", format)
	}
}
