package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kirsrus/labsite/model"

	"github.com/go-playground/validator/v10"
)

// Field определяет причину невалидности значения поля формы по его ограничениям.
// Причины проверяются в порядке приоритета: пустое, короткое, длинное, неверный тип, формат
func (m *Validator) Field(value string, constraints model.FieldConstraints) model.Validity {
	if value == "" {
		if constraints.Required {
			return model.ValueMissing
		}
		// Необязательное пустое поле остальным ограничениям не подлежит
		return model.Valid
	}

	tags := make([]string, 0, 3)
	if constraints.MinLength > 0 {
		tags = append(tags, fmt.Sprintf("min=%d", constraints.MinLength))
	}
	if constraints.MaxLength > 0 {
		tags = append(tags, fmt.Sprintf("max=%d", constraints.MaxLength))
	}
	if strings.EqualFold(constraints.Type, "email") {
		tags = append(tags, "email")
	}
	if len(tags) != 0 {
		if err := m.validator.Var(value, strings.Join(tags, ",")); err != nil {
			return validityFromError(err)
		}
	}

	if constraints.Pattern != "" {
		re, err := regexp.Compile("^(?:" + constraints.Pattern + ")$")
		if err != nil {
			// Некорректный шаблон браузер игнорирует
			return model.Valid
		}
		if !re.MatchString(value) {
			return model.PatternMismatch
		}
	}
	return model.Valid
}

// Сопоставление тега сработавшей проверки с причиной невалидности
func validityFromError(err error) model.Validity {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return model.Invalid
	}
	switch errs[0].Tag() {
	case "required":
		return model.ValueMissing
	case "min":
		return model.TooShort
	case "max":
		return model.TooLong
	case "email":
		return model.TypeMismatch
	default:
		return model.Invalid
	}
}
