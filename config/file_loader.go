package config

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/core/validator"
	"github.com/kochabx/passport/errors"
)

// FileLoader 从文件加载配置，环境变量可覆盖文件中的同名键（"." 替换为 "_"）
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
}

// NewFileLoader 创建文件加载器。name 可以是带扩展名的文件名或完整路径
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator, envPrefix string) *FileLoader {
	if v == nil {
		v = viper.New()
	}

	ext := filepath.Ext(name)
	if dir := filepath.Dir(name); dir != "." {
		v.SetConfigFile(name)
	} else {
		v.SetConfigName(strings.TrimSuffix(name, ext))
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}
	if ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	}

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{viper: v, validate: validate}
}

// Load 依次执行：默认值、读取文件、反序列化、校验
func (l *FileLoader) Load(target any) error {
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Internal("failed to apply defaults: %v", err)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		return errors.NotFound("config file not found: %v", err)
	}

	if err := l.viper.Unmarshal(target); err != nil {
		return errors.Internal("config parse error: %v", err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, http.StatusBadRequest, "config validation failed")
		}
	}
	return nil
}

// Watch 基于 fsnotify 监听配置文件
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}

// Viper 底层 viper 实例
func (l *FileLoader) Viper() *viper.Viper {
	return l.viper
}
