package scene

import (
	"errors"
	"time"

	"foosball/pkg/core"
)

// ErrNoModel 模型尚未加载或加载失败
var ErrNoModel = errors.New("scene model not loaded")

// BuildFunc 构造模型，返回错误时触发 onError
type BuildFunc func() (*Model, error)

// Loader 异步加载球桌模型，每次 Load 只会调用一个回调
type Loader struct {
	build BuildFunc
	delay time.Duration
}

// NewLoader 使用默认球桌构造模型，delay 模拟资源加载耗时
func NewLoader(table core.Table, delay time.Duration) *Loader {
	return &Loader{
		build: func() (*Model, error) { return BuildTable(table), nil },
		delay: delay,
	}
}

// NewLoaderFunc 使用自定义构造函数
func NewLoaderFunc(build BuildFunc, delay time.Duration) *Loader {
	return &Loader{build: build, delay: delay}
}

// Load 在后台协程中构造模型
func (l *Loader) Load(onLoad func(*Model), onError func(error)) {
	go func() {
		if l.delay > 0 {
			time.Sleep(l.delay)
		}
		model, err := l.build()
		if err == nil && model == nil {
			err = ErrNoModel
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onLoad != nil {
			onLoad(model)
		}
	}()
}
