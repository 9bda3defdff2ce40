package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"taigitts/internal/logger"
)

// ErrNotFound 表示历史纪录中不存在指定 ID。
var ErrNotFound = errors.New("历史纪录不存在")

// DefaultMaxEntries 默认保留的最大纪录数。
const DefaultMaxEntries = 50

// Record 一条合成纪录。JSON 字段名与 history.json 的既有格式保持一致。
type Record struct {
	ID       string `json:"id"`        // 纪录唯一标识
	Text     string `json:"text"`      // 输入的台语文本
	Model    string `json:"model"`     // 使用的模型标识
	AudioURL string `json:"audio_url"` // 音频地址（URL 或本地文件路径，存储层不解释）
	Tailo    string `json:"tailuo"`    // API 返回的白话字罗马拼音，可能为空
	IPA      string `json:"ipa"`       // API 返回的国际音标，可能为空
	Message  string `json:"message"`   // API 返回的状态信息
	Pinyin   string `json:"pinyin"`    // 本地生成的普通话拼音标注，可能为空
	Time     string `json:"time"`      // 合成时间（RFC3339, UTC）
}

// Store 合成历史的持久化存储。
//
// 纪录按插入顺序保存，最新的一条在末尾；数量超过上限时
// 每次只淘汰最前面（最旧）的一条。每次变更都把完整列表
// 快照重写到磁盘文件。
type Store struct {
	mu         sync.RWMutex
	filePath   string
	entries    []Record
	maxEntries int
}

// NewStore 创建历史存储，数据保存在 dataDir/history.json。
// maxEntries <= 0 时使用 DefaultMaxEntries。
// 文件不存在或无法解析时按空历史处理，不视为错误。
func NewStore(dataDir string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{
		filePath:   filepath.Join(dataDir, "history.json"),
		maxEntries: maxEntries,
	}
	if err := s.load(); err != nil {
		logger.Warnf("[history] 加载历史纪录失败（将使用空列表）: %v", err)
		s.entries = make([]Record, 0)
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.entries = make([]Record, 0)
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.entries)
}

// saveLocked 把完整列表快照写回磁盘（调用方需持有锁）。
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// Append 把纪录追加到末尾并持久化，返回更新后的完整列表。
//
// 超出上限时恰好淘汰最旧的一条。写盘失败不影响内存状态，
// 错误作为非致命警告返回，内存中的列表仍然有效。
func (s *Store) Append(rec Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Time == "" {
		rec.Time = time.Now().UTC().Format(time.RFC3339)
	}

	s.entries = append(s.entries, rec)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[1:]
	}

	result := s.snapshotLocked()
	if err := s.saveLocked(); err != nil {
		return result, fmt.Errorf("保存历史纪录失败: %w", err)
	}
	return result, nil
}

// List 返回全部纪录的副本，按插入顺序排列（最旧在前）。
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get 按 ID 查找纪录，不存在时返回 ErrNotFound。
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.entries {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// Clear 清空历史并持久化空列表。
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]Record, 0)
	return s.saveLocked()
}

// Len 返回当前纪录数。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) snapshotLocked() []Record {
	result := make([]Record, len(s.entries))
	copy(result, s.entries)
	return result
}
