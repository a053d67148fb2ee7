package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"clubledger/internal/core/entity"
	"clubledger/internal/domain/expense"
)

// RegisterValidators adds the domain enum tags to gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("movement_type", validMovementType); err != nil {
		return fmt.Errorf("register movement_type: %w", err)
	}
	if err := v.RegisterValidation("expense_category", validExpenseCategory); err != nil {
		return fmt.Errorf("register expense_category: %w", err)
	}
	return nil
}

func validMovementType(fl validator.FieldLevel) bool {
	return entity.MovementType(fl.Field().String()).Valid()
}

func validExpenseCategory(fl validator.FieldLevel) bool {
	return expense.Category(fl.Field().String()).Valid()
}
