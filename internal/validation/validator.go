// =============================================================================
// Invoicer - Validation Engine
// =============================================================================
//
// This module validates invoice records before they are written to the store.
// Rules are declared as `validate` struct tags on the shared types and checked
// with go-playground/validator:
//   - invoiceNo is required
//   - unit price and discount are non-negative
//   - quantity is a positive integer
//
// decimal.Decimal fields are exposed to the validator as float64 through a
// custom type function, so the numeric tags (gte, gt, ...) work on money.
//
// ERROR HANDLING:
//   - All field failures of a record are collected into a single error
//   - Each failure carries the field path, the rule and the offending value
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single failed rule.
type ValidationError struct {
	// InvoiceNo is the business key of the record that failed.
	InvoiceNo string

	// Field is the JSON path of the field, e.g. "items[0].quantity".
	Field string

	// Rule is the validator tag that was violated.
	Rule string

	// Param is the tag parameter, e.g. "1" for gte=1.
	Param string

	// Value is the offending value.
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invoice %q, field '%s': failed %s=%s (value: '%s')",
			e.InvoiceNo, e.Field, e.Rule, e.Param, e.Value)
	}
	return fmt.Sprintf("invoice %q, field '%s': failed %s (value: '%s')",
		e.InvoiceNo, e.Field, e.Rule, e.Value)
}

// Errors is the list of failures for one record.
type Errors []*ValidationError

// Error implements the error interface.
func (errs Errors) Error() string {
	return FormatErrors(errs)
}

// =============================================================================
// VALIDATOR
// =============================================================================

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the shared validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON name.
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	})
	return validate
}

// decimalValue converts decimal.Decimal to float64 for numeric tags.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateInvoice checks an invoice and all of its items.
//
// RETURNS:
//   - nil when the record is valid.
//   - Errors listing every failed rule otherwise.
func ValidateInvoice(inv *types.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice is nil")
	}

	err := instance().Struct(inv)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate invoice %q: %w", inv.InvoiceNo, err)
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &ValidationError{
			InvoiceNo: inv.InvoiceNo,
			Field:     fieldPath(fe.Namespace()),
			Rule:      fe.Tag(),
			Param:     fe.Param(),
			Value:     fmt.Sprintf("%v", fe.Value()),
		})
	}
	return out
}

// fieldPath strips the root struct name from a validator namespace:
// "Invoice.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders failures one per line.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation error(s):", len(errs)))
	for _, e := range errs {
		sb.WriteString("\n  - ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Fields flattens failures into a field -> rule map, the shape the CLI prints
// for a rejected single save.
func Fields(err error) map[string]string {
	var errs Errors
	if !errors.As(err, &errs) {
		return nil
	}

	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Rule
	}
	return out
}
