// Package directory 用户目录，只读
package directory

import "context"

// User 用户记录
type User struct {
	ID       int64
	Username string
	// bcrypt 哈希，或旧数据的 SHA-256 十六进制摘要
	PasswordHash string
}

// Directory 用户目录，用户不存在时返回 (nil, nil)
type Directory interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Static 内存用户目录
type Static struct {
	byID   map[int64]*User
	byName map[string]*User
}

var _ Directory = (*Static)(nil)

// NewStatic 用户名重复时后者覆盖前者
func NewStatic(users ...User) *Static {
	s := &Static{
		byID:   make(map[int64]*User, len(users)),
		byName: make(map[string]*User, len(users)),
	}
	for i := range users {
		u := users[i]
		s.byID[u.ID] = &u
		s.byName[u.Username] = &u
	}
	return s
}

func (s *Static) FindByID(_ context.Context, id int64) (*User, error) {
	if u, ok := s.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Static) FindByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := s.byName[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}
