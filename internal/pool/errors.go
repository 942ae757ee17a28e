package pool

import "errors"

var (
	// ErrPoolExhausted 空闲端口对耗尽
	ErrPoolExhausted = errors.New("none reserved port in pool")
	// ErrPortRange 端口范围配置不合法
	ErrPortRange = errors.New("invalid port range")
)
