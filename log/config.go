package log

import (
	"github.com/kochabx/passport/log/writer"
)

// Config 日志配置
type Config struct {
	Level       string     `json:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Output      string     `json:"output" default:"console" validate:"oneof=console file multi"`
	Desensitize bool       `json:"desensitize" default:"true"`
	Caller      bool       `json:"caller"`
	File        FileConfig `json:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Filepath   string            `json:"filepath" default:"log"`
	Filename   string            `json:"filename" default:"passport"`
	FileExt    string            `json:"fileExt" default:"log"`
	RotateMode writer.RotateMode `json:"rotateMode" default:"size" validate:"oneof=size time"`
	Rotatelogs RotatelogsConfig  `json:"rotatelogs"`
	Lumberjack LumberjackConfig  `json:"lumberjack"`
}

// RotatelogsConfig 按时间轮转配置，单位小时
type RotatelogsConfig struct {
	MaxAge       int `json:"maxAge" default:"24"`
	RotationTime int `json:"rotationTime" default:"1"`
}

// LumberjackConfig 按大小轮转配置
type LumberjackConfig struct {
	MaxSize    int  `json:"maxSize" default:"100"`
	MaxBackups int  `json:"maxBackups" default:"5"`
	MaxAge     int  `json:"maxAge" default:"30"`
	Compress   bool `json:"compress"`
}

func (c *FileConfig) rotateConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:         c.RotateMode,
		Filepath:     c.Filepath,
		Filename:     c.Filename,
		FileExt:      c.FileExt,
		MaxAgeHours:  c.Rotatelogs.MaxAge,
		RotationTime: c.Rotatelogs.RotationTime,
		MaxSizeMB:    c.Lumberjack.MaxSize,
		MaxBackups:   c.Lumberjack.MaxBackups,
		MaxAgeDays:   c.Lumberjack.MaxAge,
		Compress:     c.Lumberjack.Compress,
	}
}
