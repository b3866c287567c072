// Package db 基于 GORM 的只读用户目录
package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kochabx/passport/core/auth/directory"
)

// UserModel users 表中读取的列
type UserModel struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"uniqueIndex;size:64"`
	Password string `gorm:"size:255"`
}

// Directory GORM 用户目录
type Directory struct {
	db    *gorm.DB
	table string
}

var _ directory.Directory = (*Directory)(nil)

// Option Directory 选项
type Option func(*Directory)

// WithTable 表名，默认 users
func WithTable(table string) Option {
	return func(d *Directory) {
		if table != "" {
			d.table = table
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Directory {
	d := &Directory{db: db, table: "users"}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *Directory) FindByID(ctx context.Context, id int64) (*directory.User, error) {
	return d.first(ctx, "id = ?", id)
}

func (d *Directory) FindByUsername(ctx context.Context, username string) (*directory.User, error) {
	return d.first(ctx, "username = ?", username)
}

func (d *Directory) first(ctx context.Context, query string, arg any) (*directory.User, error) {
	var m UserModel
	err := d.db.WithContext(ctx).Table(d.table).Where(query, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &directory.User{ID: m.ID, Username: m.Username, PasswordHash: m.Password}, nil
}
