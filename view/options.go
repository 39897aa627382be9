package view

import (
	"time"

	"go.uber.org/zap"

	"Forge/pkg/log"
)

const defaultTimeout = 5 * time.Second

type options struct {
	timeout   time.Duration
	reconcile bool
	logger    *zap.Logger
}

type Option func(*options)

// WithTimeout 每次网关调用的等待上限，超时按 OperationFailed 处理
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithReconcile 写入成功后是否重新读取远端状态，默认开启
func WithReconcile(on bool) Option {
	return func(o *options) {
		o.reconcile = on
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		timeout:   defaultTimeout,
		reconcile: true,
		logger:    log.Named("view"),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
