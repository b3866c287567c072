package validator

import "errors"

// FieldError 单个字段的校验失败
type FieldError struct {
	Namespace string `json:"namespace"`
	Field     string `json:"field"`
	Tag       string `json:"tag"`
	Message   string `json:"message"`
}

// ValidationError 校验失败，Fields 按声明顺序排列
type ValidationError struct {
	Fields  []FieldError
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// HasField 是否包含指定字段（字段名或完整命名空间）的错误
func (e *ValidationError) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Field == name || f.Namespace == name {
			return true
		}
	}
	return false
}

// IsValidationError 判断 err 是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
