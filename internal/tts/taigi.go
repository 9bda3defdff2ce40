package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"taigitts/internal/config"
	"taigitts/internal/logger"
)

// TaigiEngine 调用远程台语 TTS Web API 完成合成。
// 除音频地址外还返回白话字罗马拼音（Tailo）和国际音标（IPA）。
type TaigiEngine struct {
	apiURL     string
	origin     string
	model      string
	httpClient *http.Client
}

// NewTaigiEngine 创建指定模型的台语 TTS 引擎。
func NewTaigiEngine(cfg config.TaigiConfig, model string) *TaigiEngine {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TaigiEngine{
		apiURL: cfg.APIURL,
		origin: cfg.Origin,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name 返回模型标识。
func (e *TaigiEngine) Name() string { return e.model }

// taigiRequest 远程 API 的请求体。
type taigiRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// taigiResponse 远程 API 的响应体。
// 音频地址字段有新旧两个名字，优先使用 converted_audio_url。
type taigiResponse struct {
	ConvertedAudioURL string `json:"converted_audio_url"`
	AudioURL          string `json:"audio_url"`
	Message           string `json:"message"`
	Tailo             string `json:"tailuo"`
	IPA               string `json:"ipa"`
}

// Synthesize 发起一次合成调用。只尝试一次，不做重试。
// 所有失败都以 *APIError 返回，信息可直接展示给用户。
func (e *TaigiEngine) Synthesize(ctx context.Context, text string) (*Result, error) {
	logger.Infof("[tts] taigi API: 正在合成 %d 个字符，模型=%s", len([]rune(text)), e.model)

	payload, err := json.Marshal(taigiRequest{Text: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("构建请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.origin != "" {
		req.Header.Set("Origin", e.origin)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("TTS API 連線失敗：%v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Detail: fmt.Sprintf("讀取 TTS API 回應失敗：%v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Detail: truncateDetail(string(body))}
	}

	var data taigiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &APIError{Detail: "TTS API 回傳非 JSON 內容。"}
	}

	audioURL := data.ConvertedAudioURL
	if audioURL == "" {
		audioURL = data.AudioURL
	}
	if audioURL == "" {
		return nil, &APIError{Detail: "TTS API 回傳內容缺少音檔網址 (audio_url)。"}
	}

	logger.Infof("[tts] taigi API: 合成完成 (%s)", audioURL)

	return &Result{
		AudioURL: audioURL,
		Tailo:    data.Tailo,
		IPA:      data.IPA,
		Message:  data.Message,
	}, nil
}

// truncateDetail 截断响应正文，避免把整页错误塞进提示信息。
func truncateDetail(s string) string {
	const limit = 300
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
