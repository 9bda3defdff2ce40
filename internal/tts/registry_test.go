package tts

import (
	"testing"

	"taigitts/internal/config"
)

func TestRegistryModelsAndLookup(t *testing.T) {
	reg, err := NewRegistry(config.TTSConfig{
		Taigi: config.TaigiConfig{
			APIURL: "https://example.com/tts",
			Models: []string{"model6", "model7"},
		},
		Edge: config.EdgeConfig{Enabled: true, Voice: "zh-TW-HsiaoChenNeural"},
	})
	if err != nil {
		t.Fatalf("NewRegistry 失败: %v", err)
	}

	models := reg.Models()
	want := []string{"model6", "model7", "edge"}
	if len(models) != len(want) {
		t.Fatalf("期望 %d 个模型，得到 %d 个", len(want), len(models))
	}
	for i, m := range want {
		if models[i] != m {
			t.Errorf("第 %d 个模型应为 %s，得到 %s", i, m, models[i])
		}
	}

	if _, ok := reg.Lookup("model6"); !ok {
		t.Error("应能找到 model6")
	}
	if _, ok := reg.Lookup("unknown"); ok {
		t.Error("不应找到未注册的模型")
	}
}

func TestRegistryEmpty(t *testing.T) {
	_, err := NewRegistry(config.TTSConfig{})
	if err == nil {
		t.Fatal("没有任何模型时应返回错误")
	}
}
