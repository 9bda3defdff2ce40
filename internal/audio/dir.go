package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir 管理本地合成音频文件的存放目录。
// Edge / 腾讯云引擎返回的 MP3 数据落盘后经 /audio/ 路径对外提供。
type Dir struct {
	path string
}

// NewDir 创建音频目录管理器，目录不存在时自动创建。
func NewDir(dataDir string) (*Dir, error) {
	path := filepath.Join(dataDir, "audio")
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("创建音频目录失败: %w", err)
	}
	return &Dir{path: path}, nil
}

// SaveMP3 以纪录 ID 为文件名保存 MP3 数据，返回文件名。
func (d *Dir) SaveMP3(id string, data []byte) (string, error) {
	name := id + ".mp3"
	if err := os.WriteFile(filepath.Join(d.path, name), data, 0644); err != nil {
		return "", fmt.Errorf("保存音频文件失败: %w", err)
	}
	return name, nil
}

// Read 读取指定文件名的音频数据。
// 文件名中的路径分隔符会被拒绝，避免越出音频目录。
func (d *Dir) Read(name string) ([]byte, error) {
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return nil, fmt.Errorf("非法的音频文件名: %s", name)
	}
	return os.ReadFile(filepath.Join(d.path, name))
}

// Path 返回目录的绝对路径，供静态文件服务使用。
func (d *Dir) Path() string {
	return d.path
}
