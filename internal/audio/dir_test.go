package audio

import (
	"bytes"
	"testing"
)

func TestDirSaveAndRead(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir 失败: %v", err)
	}

	data := []byte{0xFF, 0xFB, 0x90, 0x00}
	name, err := dir.SaveMP3("rec-1", data)
	if err != nil {
		t.Fatalf("SaveMP3 失败: %v", err)
	}
	if name != "rec-1.mp3" {
		t.Errorf("文件名不匹配: %s", name)
	}

	got, err := dir.Read(name)
	if err != nil {
		t.Fatalf("Read 失败: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("读取的数据与写入不一致")
	}
}

func TestDirReadRejectsTraversal(t *testing.T) {
	dir, _ := NewDir(t.TempDir())

	for _, name := range []string{"../secret", "a/b.mp3", "..\\x.mp3"} {
		if _, err := dir.Read(name); err == nil {
			t.Errorf("应拒绝非法文件名: %s", name)
		}
	}
}

func TestFloat32ToBytesRoundsAndClamps(t *testing.T) {
	in := []float32{0, 1.0, -1.0, 2.0}
	out := Float32ToBytes(in)
	if len(out) != 8 {
		t.Fatalf("期望 8 字节，得到 %d", len(out))
	}
	// 超出范围的样本应被钳位到最大值
	if out[6] != out[2] || out[7] != out[3] {
		t.Error("2.0 应与 1.0 编码一致")
	}
}
