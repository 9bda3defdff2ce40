package tts

import "context"

// Result 一次合成的结果。
// 远程 taigi API 返回托管的音频 URL；本地拼装的引擎（edge、腾讯云）
// 返回 MP3 字节，由调用方决定落盘位置。
type Result struct {
	AudioURL  string // 托管音频地址，与 AudioData 二选一
	AudioData []byte // MP3 音频数据，与 AudioURL 二选一
	Tailo     string // 白话字罗马拼音，仅 taigi API 提供
	IPA       string // 国际音标，仅 taigi API 提供
	Message   string // 状态信息
}

// Engine 定义语音合成后端接口。
type Engine interface {
	// Name 返回引擎在模型下拉框中的标识。
	Name() string
	// Synthesize 将文本转换为音频及附带的注音信息。
	Synthesize(ctx context.Context, text string) (*Result, error)
}
