package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"taigitts/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 合成。台语模型之外的备选，
// 默认台湾腔普通话语音，不提供白话字与 IPA 注音。
type EdgeEngine struct {
	voice string
}

// NewEdgeEngine 创建指定语音的 Edge TTS 引擎。
func NewEdgeEngine(voice string) *EdgeEngine {
	return &EdgeEngine{voice: voice}
}

// Name 返回引擎标识。
func (e *EdgeEngine) Name() string { return "edge" }

// Synthesize 将文本合成为 MP3 音频数据。
func (e *EdgeEngine) Synthesize(ctx context.Context, text string) (*Result, error) {
	logger.Infof("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", len([]rune(text)), e.voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(e.voice))
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("Edge TTS 初始化失敗：%v", err)}
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("Edge TTS 串流失敗：%v", err)}
	}

	// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	if mp3Buf.Len() == 0 {
		return nil, &APIError{Detail: "Edge TTS 未回傳音訊資料。"}
	}

	logger.Infof("[tts] edge-tts: 收到 %d 字节 MP3 数据", mp3Buf.Len())

	return &Result{
		AudioData: mp3Buf.Bytes(),
		Message:   fmt.Sprintf("Edge TTS 合成完成（%s）", e.voice),
	}, nil
}
