package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taigitts/internal/audio"
	"taigitts/internal/history"
	"taigitts/internal/logger"
	"taigitts/internal/romanize"
	"taigitts/internal/tts"
)

// ErrEmptyText 输入文本为空。
var ErrEmptyText = errors.New("請輸入要轉成語音的文字。")

// ErrUnknownModel 请求了未注册的模型。
var ErrUnknownModel = errors.New("未知的模型")

// localAudioPrefix 本地落盘音频在 HTTP 上的访问前缀。
const localAudioPrefix = "/audio/"

// Handler 串联一次合成请求：调用引擎、落盘音频、写入历史。
type Handler struct {
	store      *history.Store
	registry   *tts.Registry
	audioDir   *audio.Dir
	player     *audio.Player // 为 nil 时禁用本机播放
	httpClient *http.Client  // 下载远程音频用于本机播放
}

// NewHandler 创建请求处理器。player 传 nil 表示不启用本机播放。
func NewHandler(store *history.Store, registry *tts.Registry, audioDir *audio.Dir, player *audio.Player) *Handler {
	return &Handler{
		store:    store,
		registry: registry,
		audioDir: audioDir,
		player:   player,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ConvertResult 一次成功合成的展示数据。
type ConvertResult struct {
	Record  history.Record
	History []history.Record // 更新后的完整历史，最旧在前
}

// Convert 执行一次合成并追加历史纪录。
//
// 引擎调用失败时不写入任何纪录，错误信息可直接展示；
// 历史写盘失败只记录警告，不影响本次合成结果。
func (h *Handler) Convert(ctx context.Context, text, model string) (*ConvertResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	engine, ok := h.registry.Lookup(model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}

	result, err := engine.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()

	audioRef := result.AudioURL
	if len(result.AudioData) > 0 {
		name, err := h.audioDir.SaveMP3(id, result.AudioData)
		if err != nil {
			return nil, fmt.Errorf("保存音頻失敗: %w", err)
		}
		audioRef = localAudioPrefix + name
	}

	message := result.Message
	if message == "" {
		message = "完成"
	}

	rec := history.Record{
		ID:       id,
		Text:     text,
		Model:    model,
		AudioURL: audioRef,
		Tailo:    result.Tailo,
		IPA:      result.IPA,
		Message:  message,
		Pinyin:   romanize.Annotate(text),
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	updated, err := h.store.Append(rec)
	if err != nil {
		// 内存中的历史仍然有效，下一次写盘会重写完整快照
		logger.Warnf("[server] %v", err)
	}

	return &ConvertResult{Record: rec, History: updated}, nil
}

// Replay 按 ID 取出历史纪录用于重播。
func (h *Handler) Replay(id string) (history.Record, error) {
	return h.store.Get(id)
}

// Play 在本机扬声器上播放指定历史纪录的音频。
func (h *Handler) Play(ctx context.Context, id string) error {
	if h.player == nil {
		return errors.New("本機播放未啟用")
	}

	rec, err := h.store.Get(id)
	if err != nil {
		return err
	}

	data, err := h.fetchAudio(ctx, rec.AudioURL)
	if err != nil {
		return err
	}
	return h.player.PlayMP3(ctx, data)
}

// fetchAudio 取得纪录引用的音频：本地文件直接读取，远程地址下载。
func (h *Handler) fetchAudio(ctx context.Context, ref string) ([]byte, error) {
	if name, ok := strings.CutPrefix(ref, localAudioPrefix); ok {
		return h.audioDir.Read(name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("创建下载请求失败: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载音频失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载音频返回错误状态码: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Models 返回可用的模型标识，供界面下拉框使用。
func (h *Handler) Models() []string {
	return h.registry.Models()
}

// History 返回最新在前的历史纪录，供界面展示。
func (h *Handler) History() []history.Record {
	entries := h.store.List()
	// 存储按插入顺序保存（最新在末尾），展示时反转
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// Clear 清空历史纪录。
func (h *Handler) Clear() error {
	return h.store.Clear()
}
