package service

import "fmt"

const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
)

// эталоны для errors.Is, сравнение идёт по коду
var (
	ErrNotFound    = &BusinessError{Code: CodeNotFound}
	ErrPersistence = &BusinessError{Code: CodePersistenceFailure}
	ErrValidation  = &BusinessError{Code: CodeValidation}
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func (b *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	if !ok {
		return false
	}
	return t.Code == b.Code
}

func NewNotFound(id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("задача %s не найдена", id),
		Details: map[string]any{
			"resource": "task",
			"id":       id,
		},
	}
}

// NewValidationError - некорректный ввод клиента
func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

// NewPersistenceFailure означает, что запись не дошла до хранилища; операцию можно повторить
func NewPersistenceFailure(operation string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodePersistenceFailure,
		Message: fmt.Sprintf("не удалось сохранить изменения (%s)", operation),
		Details: map[string]any{
			"operation": operation,
		},
		Err: err,
	}
}
