package session

import (
	"context"
	"fmt"

	"github.com/kochabx/passport/core/auth/directory"
)

// UserInfo 对外公开的用户信息
type UserInfo struct {
	Username string `json:"username"`
}

// IdentityResolver 用户公开信息查询
type IdentityResolver struct {
	dir directory.Directory
}

func NewIdentityResolver(dir directory.Directory) *IdentityResolver {
	return &IdentityResolver{dir: dir}
}

// GetUserMe 用户不存在时返回 (nil, nil)
func (r *IdentityResolver) GetUserMe(ctx context.Context, uid int64) (*UserInfo, error) {
	u, err := r.dir.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("session: find user %d: %w", uid, err)
	}
	if u == nil {
		return nil, nil
	}
	return &UserInfo{Username: u.Username}, nil
}
