package model

// Validity причина невалидности поля формы. Порядок констант - приоритет проверки
type Validity int

const (
	Valid Validity = iota
	ValueMissing
	TooShort
	TooLong
	TypeMismatch
	PatternMismatch
	// Прочие причины
	Invalid
)

// String имя причины для логов
func (m Validity) String() string {
	switch m {
	case Valid:
		return "valid"
	case ValueMissing:
		return "valueMissing"
	case TooShort:
		return "tooShort"
	case TooLong:
		return "tooLong"
	case TypeMismatch:
		return "typeMismatch"
	case PatternMismatch:
		return "patternMismatch"
	default:
		return "invalid"
	}
}

// FieldConstraints ограничения поля формы, прочитанные из HTML атрибутов
type FieldConstraints struct {
	Required  bool
	MinLength int
	MaxLength int
	// Тип input: text, email, password и т.п.
	Type    string
	Pattern string
}

// FieldState результат проверки поля
type FieldState struct {
	Name     string
	Value    string
	Validity Validity
	Message  string
}
