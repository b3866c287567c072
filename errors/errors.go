package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	UnknownCode = 500

	separator = ", "
)

// Status 错误状态：错误码、消息与元数据
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error 带错误码的结构化错误，可携带底层原因
type Error struct {
	Status
	cause error
}

// Error 形如 code=404, message=user not found, metadata={k=v}, cause=...，元数据按键排序
func (e *Error) Error() string {
	parts := []string{"code=" + strconv.Itoa(e.Code), "message=" + e.Message}
	if len(e.Metadata) > 0 {
		kv := make([]string, 0, len(e.Metadata))
		for _, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			kv = append(kv, k+"="+e.Metadata[k])
		}
		parts = append(parts, "metadata={"+strings.Join(kv, separator)+"}")
	}
	if e.cause != nil {
		parts = append(parts, "cause="+e.cause.Error())
	}
	return strings.Join(parts, separator)
}

// Unwrap 返回底层原因
func (e *Error) Unwrap() error {
	return e.cause
}

// Is 错误码与消息都相同时视为同一错误
func (e *Error) Is(err error) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return e.Code == ge.Code && e.Message == ge.Message
	}
	return false
}

// WithMetadata 返回附加元数据后的副本
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause 返回附加原因后的副本
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	err := e.clone()
	err.cause = cause
	return err
}

func (e *Error) clone() *Error {
	return &Error{
		Status: Status{
			Code:     e.Code,
			Message:  e.Message,
			Metadata: maps.Clone(e.Metadata),
		},
		cause: e.cause,
	}
}

// New 创建错误
func New(code int, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	return &Error{Status: Status{Code: code, Message: message}}
}

// Wrap 以错误码包装 err，err 为 nil 时返回 nil
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}

// FromError 转换为 *Error，非 *Error 使用 UnknownCode
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return New(UnknownCode, "%v", err)
}

// Code 返回错误链上第一个 *Error 的错误码，nil 返回 0
func Code(err error) int {
	if err == nil {
		return 0
	}
	return FromError(err).Code
}
