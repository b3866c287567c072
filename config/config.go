package config

import (
	"reflect"
	"sync"

	"github.com/kochabx/passport/core/validator"
	"github.com/kochabx/passport/errors"
	"github.com/kochabx/passport/log"
)

// ErrInvalidTarget target 不是非 nil 的结构体指针
var ErrInvalidTarget = errors.Internal("config target must be a non-nil struct pointer")

// Config 配置管理
type Config struct {
	mu        sync.RWMutex
	target    any
	loader    Loader
	validate  validator.Validator
	name      string
	paths     []string
	envPrefix string
	onChange  []func(next any)
}

// Option 配置选项
type Option func(*Config)

// WithLoader 使用自定义加载器
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithValidator 使用自定义校验器
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithFile 设置配置文件名或路径，默认 config.yaml
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.name = name
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithOnChange 文件变化且新配置通过校验后回调，next 与 target 同类型，是独立的新值
func WithOnChange(fn func(next any)) Option {
	return func(c *Config) {
		if fn != nil {
			c.onChange = append(c.onChange, fn)
		}
	}
}

// New 创建配置管理器，target 为配置结构体指针
func New(target any, opts ...Option) *Config {
	c := &Config{
		target:   target,
		validate: validator.Validate,
		name:     "config.yaml",
		paths:    []string{"."},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader(c.name, c.paths, nil, c.validate, c.envPrefix)
	}
	return c
}

// Load 加载到新值，通过校验后才整体写入 target；失败时 target 保持不变
func (c *Config) Load() error {
	next, err := c.fresh()
	if err != nil {
		return err
	}
	c.mu.Lock()
	reflect.ValueOf(c.target).Elem().Set(reflect.ValueOf(next).Elem())
	c.mu.Unlock()
	return nil
}

// fresh 按 target 的类型加载一个新值
func (c *Config) fresh() (any, error) {
	t := reflect.TypeOf(c.target)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct || reflect.ValueOf(c.target).IsNil() {
		return nil, ErrInvalidTarget
	}
	next := reflect.New(t.Elem()).Interface()
	if err := c.loader.Load(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Watch 监听配置文件。变化后加载新值交给 WithOnChange 回调，不修改 target，
// 由回调决定哪些字段可以在运行中生效
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		next, err := c.fresh()
		if err != nil {
			log.Error().Err(err).Msg("config change rejected")
			return
		}
		log.Info().Msg("config change loaded")
		for _, fn := range c.onChange {
			fn(next)
		}
	})
}

// Read 在读锁内访问 target，避免与 Load 并发
func (c *Config) Read(fn func(target any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.target)
}
