package events

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("uniqueidpositive", validateUniqueIDPositive)
	})
	return validate
}

// validateUniqueIDPositive enforces that every id in a []int64 field is
// >= 1 and that no id repeats — grounded on the original validate_id_vec
// constraint applied to every member-id list in the protocol.
func validateUniqueIDPositive(fl validator.FieldLevel) bool {
	ids, ok := fl.Field().Interface().([]int64)
	if !ok {
		return false
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id < 1 {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// Validate runs struct-tag validation against a decoded request payload.
func Validate(req any) error {
	return getValidator().Struct(req)
}
