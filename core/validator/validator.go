package validator

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 结构体校验器
type Validator interface {
	Struct(s any) error
	StructCtx(ctx context.Context, s any) error
}

// Validate 全局校验器
var Validate Validator = New()

// Option 校验器选项
type Option func(*validate)

// WithLanguage 设置错误消息语言，支持 en、zh
func WithLanguage(lang string) Option {
	return func(v *validate) {
		v.lang = lang
	}
}

type validate struct {
	v     *validator.Validate
	trans ut.Translator
	lang  string
}

// New 创建校验器
func New(opts ...Option) Validator {
	v := &validate{
		v:    validator.New(validator.WithRequiredStructEnabled()),
		lang: "en",
	}
	for _, opt := range opts {
		opt(v)
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	trans, _ := uni.GetTranslator(v.lang)
	switch v.lang {
	case "zh":
		_ = zh_translations.RegisterDefaultTranslations(v.v, trans)
	default:
		_ = en_translations.RegisterDefaultTranslations(v.v, trans)
	}
	v.trans = trans

	return v
}

func (v *validate) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

func (v *validate) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validator: target is nil")
	}
	return v.translate(v.v.StructCtx(ctx, s))
}

func (v *validate) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(v.trans)
		fields = append(fields, FieldError{
			Namespace: fe.Namespace(),
			Field:     fe.Field(),
			Tag:       fe.Tag(),
			Message:   msg,
		})
		messages = append(messages, msg)
	}
	return &ValidationError{Fields: fields, message: strings.Join(messages, "; ")}
}
