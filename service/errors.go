package service

import "errors"

var (
	ErrPhoneTooShort = errors.New("enter at least 4 digits of the phone number")
	ErrPhoneRequired = errors.New("customer phone is required")
	ErrInvalidReturn = errors.New("invoice number, product and a positive quantity are required")
	ErrInvalidLine   = errors.New("product id and a non-negative price are required")
)
