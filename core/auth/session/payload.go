package session

import (
	"encoding/json"
	"fmt"
)

// PayloadVersion 当前缓存载荷版本
const PayloadVersion = 1

// Payload 缓存中的会话载荷，以访问令牌和刷新令牌两个 key 存储同一份内容
type Payload struct {
	UID          int64    `json:"uid"`
	Permissions  []string `json:"permissions"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

type payloadV1 struct {
	Version int `json:"v"`
	Payload
}

// EncodePayload 序列化为 {"v":1,"uid":...,"permissions":[...],"accessToken":...,"refreshToken":...}
func EncodePayload(p *Payload) (string, error) {
	out := *p
	if out.Permissions == nil {
		out.Permissions = []string{}
	}
	b, err := json.Marshal(payloadV1{Version: PayloadVersion, Payload: out})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return string(b), nil
}

// DecodePayload 解析缓存载荷，缺少 v 时按版本 1 处理
func DecodePayload(s string) (*Payload, error) {
	var raw struct {
		Version *int `json:"v"`
		Payload
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	version := PayloadVersion
	if raw.Version != nil {
		version = *raw.Version
	}
	if version != PayloadVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedPayload, version)
	}
	if raw.UID <= 0 {
		return nil, fmt.Errorf("%w: uid %d", ErrMalformedPayload, raw.UID)
	}

	p := raw.Payload
	if p.Permissions == nil {
		p.Permissions = []string{}
	}
	return &p, nil
}
