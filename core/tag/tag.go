package tag

import (
	"reflect"
)

const (
	defaultTagName  = "default"
	defaultMaxDepth = 32
)

// Option ApplyDefaults 选项
type Option func(*walker)

// WithTagName 设置读取的标签名，默认 "default"
func WithTagName(name string) Option {
	return func(w *walker) {
		w.tagName = name
	}
}

// ApplyDefaults 按 `default:"..."` 标签为零值字段填充默认值。
// target 必须是指向结构体的指针；非零字段保持不变，嵌套结构体递归处理。
//
//	type Config struct {
//	    Scheme string        `default:"Bearer"`
//	    TTL    time.Duration `default:"1h"`
//	}
func ApplyDefaults(target any, opts ...Option) error {
	w := &walker{tagName: defaultTagName, maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(w)
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	return w.walkStruct(v.Elem(), "", 0)
}

type walker struct {
	tagName  string
	maxDepth int
}

func (w *walker) walkStruct(v reflect.Value, prefix string, depth int) error {
	if depth >= w.maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		if err := w.walkField(fv, field.Tag.Get(w.tagName), path, depth); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkField(fv reflect.Value, tagValue, path string, depth int) error {
	switch fv.Kind() {
	case reflect.Struct:
		return w.walkStruct(fv, path, depth+1)

	case reflect.Pointer:
		if fv.Type().Elem().Kind() == reflect.Struct {
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			return w.walkStruct(fv.Elem(), path, depth+1)
		}
		if !fv.IsNil() || tagValue == "" {
			return nil
		}
		ptr := reflect.New(fv.Type().Elem())
		if err := parse(ptr.Elem(), tagValue); err != nil {
			return newFieldError(path, fv.Kind(), w.tagName, tagValue, err)
		}
		fv.Set(ptr)
		return nil

	case reflect.Slice:
		if fv.Len() > 0 {
			return w.walkElements(fv, path, depth)
		}
	}

	if tagValue == "" || !fv.IsZero() {
		return nil
	}
	if err := parse(fv, tagValue); err != nil {
		return newFieldError(path, fv.Kind(), w.tagName, tagValue, err)
	}
	return nil
}

// walkElements 为已有的结构体切片元素填充默认值
func (w *walker) walkElements(fv reflect.Value, path string, depth int) error {
	for i := 0; i < fv.Len(); i++ {
		elem := fv.Index(i)
		if elem.Kind() == reflect.Pointer && !elem.IsNil() {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			continue
		}
		if err := w.walkStruct(elem, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}
