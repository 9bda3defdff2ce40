package tts

import (
	"fmt"

	"taigitts/internal/config"
	"taigitts/internal/logger"
)

// Registry 维护模型标识到合成引擎的映射。
// 模型列表的顺序即界面下拉框的顺序。
type Registry struct {
	engines map[string]Engine
	models  []string
}

// NewRegistry 根据配置构建引擎注册表。
// taigi API 的每个模型都会注册；Edge 与腾讯云引擎按配置可选。
func NewRegistry(cfg config.TTSConfig) (*Registry, error) {
	r := &Registry{}

	for _, model := range cfg.Taigi.Models {
		r.Register(model, NewTaigiEngine(cfg.Taigi, model))
	}

	if cfg.Edge.Enabled {
		r.Register("edge", NewEdgeEngine(cfg.Edge.Voice))
	}

	if cfg.Tencent.SecretID != "" && cfg.Tencent.SecretKey != "" {
		engine, err := NewTencentEngine(cfg.Tencent)
		if err != nil {
			return nil, err
		}
		r.Register("tencent", engine)
	}

	if len(r.models) == 0 {
		return nil, fmt.Errorf("没有可用的 TTS 模型")
	}

	logger.Infof("[tts] 已注册 %d 个模型: %v", len(r.models), r.models)
	return r, nil
}

// Register 注册一个引擎，重复的模型标识会被忽略。
func (r *Registry) Register(model string, e Engine) {
	if r.engines == nil {
		r.engines = make(map[string]Engine)
	}
	if _, ok := r.engines[model]; ok {
		return
	}
	r.engines[model] = e
	r.models = append(r.models, model)
}

// Lookup 按模型标识查找引擎。
func (r *Registry) Lookup(model string) (Engine, bool) {
	e, ok := r.engines[model]
	return e, ok
}

// Models 返回所有可用模型标识，顺序固定。
func (r *Registry) Models() []string {
	result := make([]string, len(r.models))
	copy(result, r.models)
	return result
}
