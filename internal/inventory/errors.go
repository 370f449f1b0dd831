package inventory

import "errors"

var (
	ErrNotLoaded         = errors.New("inventory not loaded")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidBackup     = errors.New("invalid backup file")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidPIN        = errors.New("invalid access PIN")
)
