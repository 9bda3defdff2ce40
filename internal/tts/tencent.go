package tts

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tcloudtts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"taigitts/internal/config"
	"taigitts/internal/logger"
)

// TencentEngine 使用腾讯云 TTS 合成，配置了密钥时才会注册。
// 返回 MP3 音频数据，不提供注音信息。
type TencentEngine struct {
	client    *tcloudtts.Client
	voiceType int64
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg config.TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	voiceType := cfg.VoiceType
	if voiceType == 0 {
		voiceType = 1001 // 默认音色：智瑜（女声）
	}
	region := cfg.Region
	if region == "" {
		region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tcloudtts.NewClient(credential, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 引擎已初始化 (voice=%d, region=%s)", voiceType, region)

	return &TencentEngine{
		client:    client,
		voiceType: voiceType,
	}, nil
}

// Name 返回引擎标识。
func (e *TencentEngine) Name() string { return "tencent" }

// Synthesize 将文本合成为 MP3 音频数据。
func (e *TencentEngine) Synthesize(ctx context.Context, text string) (*Result, error) {
	logger.Infof("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(text)), e.voiceType)

	request := tcloudtts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(text)
	request.VoiceType = common.Int64Ptr(e.voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(1.0)
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("騰訊雲 TTS 合成失敗：%v", err)}
	}

	if response.Response == nil || response.Response.Audio == nil {
		return nil, &APIError{Detail: "騰訊雲 TTS 未回傳音訊資料。"}
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("騰訊雲 TTS 音訊解碼失敗：%v", err)}
	}

	logger.Infof("[tts] 腾讯云 TTS: 收到 %d 字节 MP3 数据", len(mp3Data))

	return &Result{
		AudioData: mp3Data,
		Message:   "騰訊雲 TTS 合成完成",
	}, nil
}
