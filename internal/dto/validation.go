package dto

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of billing periods.
const MonthLayout = "2006-01"

var registerOnce sync.Once

// RegisterValidators installs the custom binding validators used by the request DTOs:
//
//	money           non-negative decimal with at most two decimal places
//	positive_money  like money, but strictly greater than zero
//	yearmonth       a YYYY-MM period
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	var err error
	registerOnce.Do(func() {
		err = registerOn(v)
	})
	return err
}

func registerOn(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, ok := moneyValue(fl)
		return ok && !d.IsNegative()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("positive_money", func(fl validator.FieldLevel) bool {
		d, ok := moneyValue(fl)
		return ok && d.IsPositive()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(MonthLayout, fl.Field().String())
		return err == nil
	})
}

// decimalValue exposes decimals to the validator as their string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func moneyValue(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, d.Exponent() >= -2 || d.Equal(d.Round(2))
}

// ParseDate parses a YYYY-MM-DD string, returning fallback for an empty string.
func ParseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// ParseOptionalDate parses a YYYY-MM-DD string, returning nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s, time.Time{})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
