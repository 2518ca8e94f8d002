package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOrderNotFound = errors.New("order not found")
)

// InvalidInputError covers malformed or out-of-range request data. Nothing
// is persisted once one of these is raised.
type InvalidInputError struct {
	Field string
	Msg   string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalidInput(field, msg string) error {
	return &InvalidInputError{Field: field, Msg: msg}
}

type UnknownProductError struct {
	Slug string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product: %s", e.Slug)
}

// OutOfStockError names the product, so the storefront can tell the customer
// exactly what just sold out instead of a generic checkout failure.
type OutOfStockError struct {
	Slug      string
	Name      string
	Amount    string
	Requested int64
	Available int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s %s is out of stock (requested %d, available %d)",
		e.Name, e.Amount, e.Requested, e.Available)
}

// ValidationError is a state-machine precondition failure. The message is
// meant for direct display to the operator.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationError(msg string) error {
	return &ValidationError{Msg: msg}
}
