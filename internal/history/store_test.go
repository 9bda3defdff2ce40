package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStoreAppendAndList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 50)
	if err != nil {
		t.Fatalf("NewStore 失败: %v", err)
	}

	// 空列表
	if entries := store.List(); len(entries) != 0 {
		t.Fatalf("期望空列表，得到 %d 条", len(entries))
	}

	// 追加
	updated, err := store.Append(Record{Text: "逐家好", Model: "model6"})
	if err != nil {
		t.Fatalf("Append 失败: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("期望 1 条，得到 %d 条", len(updated))
	}
	if updated[0].ID == "" {
		t.Error("ID 不应为空")
	}
	if updated[0].Time == "" {
		t.Error("Time 不应为空")
	}
	if updated[0].Text != "逐家好" {
		t.Errorf("文本不匹配: %s", updated[0].Text)
	}
}

func TestStoreLengthEqualsAppendsUpToCapacity(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)

	// 不超过容量时，长度等于追加次数
	for i := 1; i <= 50; i++ {
		if _, err := store.Append(Record{ID: fmt.Sprintf("rec_%d", i)}); err != nil {
			t.Fatalf("第 %d 次 Append 失败: %v", i, err)
		}
		if store.Len() != i {
			t.Fatalf("追加 %d 次后长度应为 %d，得到 %d", i, i, store.Len())
		}
	}
}

func TestStoreEvictsExactlyOldest(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)

	// 追加 51 条，第 1 条应被淘汰，其余保持原有相对顺序
	for i := 1; i <= 51; i++ {
		_, _ = store.Append(Record{ID: fmt.Sprintf("rec_%d", i)})
	}

	entries := store.List()
	if len(entries) != 50 {
		t.Fatalf("期望 50 条，得到 %d 条", len(entries))
	}
	if entries[0].ID != "rec_2" {
		t.Errorf("最旧的一条应为 rec_2，得到 %s", entries[0].ID)
	}
	if entries[len(entries)-1].ID != "rec_51" {
		t.Errorf("最新的一条应为 rec_51，得到 %s", entries[len(entries)-1].ID)
	}
	if _, err := store.Get("rec_1"); !errors.Is(err, ErrNotFound) {
		t.Error("rec_1 应已被淘汰")
	}
}

func TestStoreAppend52YieldsIDs3To52(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)

	for i := 1; i <= 52; i++ {
		_, _ = store.Append(Record{ID: fmt.Sprintf("%d", i)})
	}

	entries := store.List()
	if len(entries) != 50 {
		t.Fatalf("期望 50 条，得到 %d 条", len(entries))
	}
	for i, r := range entries {
		want := fmt.Sprintf("%d", i+3)
		if r.ID != want {
			t.Fatalf("第 %d 个元素应为 %s，得到 %s", i, want, r.ID)
		}
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 50)
	if err != nil {
		t.Fatalf("文件不存在时 NewStore 不应失败: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("期望空历史，得到 %d 条", store.Len())
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "history.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("写入损坏文件失败: %v", err)
	}

	store, err := NewStore(dir, 50)
	if err != nil {
		t.Fatalf("文件损坏时 NewStore 不应失败: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("损坏文件应按空历史处理，得到 %d 条", store.Len())
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// 第一次创建并追加
	store1, _ := NewStore(dir, 50)
	_, _ = store1.Append(Record{ID: "a", Text: "天公伯"})
	_, _ = store1.Append(Record{ID: "b", Text: "多谢"})

	// 确认文件存在
	if _, err := os.Stat(filepath.Join(dir, "history.json")); err != nil {
		t.Fatalf("持久化文件不存在: %v", err)
	}

	// 第二次创建，应加载已有数据且顺序不变
	store2, _ := NewStore(dir, 50)
	entries := store2.List()
	if len(entries) != 2 {
		t.Fatalf("加载后期望 2 条，得到 %d 条", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("加载后顺序不匹配: %s, %s", entries[0].ID, entries[1].ID)
	}
	if entries[1].Text != "多谢" {
		t.Errorf("加载后文本不匹配: %s", entries[1].Text)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)
	_, _ = store.Append(Record{ID: "exists"})

	if _, err := store.Get("exists"); err != nil {
		t.Fatalf("查找已有纪录不应失败: %v", err)
	}
	if _, err := store.Get("not_exist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("查找不存在的纪录应返回 ErrNotFound，得到 %v", err)
	}
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)
	_, _ = store.Append(Record{ID: "a"})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear 失败: %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("清空后列表应为空")
	}

	// 清空状态应已持久化
	store2, _ := NewStore(dir, 50)
	if store2.Len() != 0 {
		t.Fatal("重新加载后列表应为空")
	}
}

func TestStoreAppendSurvivesWriteFailure(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)
	_, _ = store.Append(Record{ID: "a"})

	// 用同名目录顶替快照文件，让写盘失败
	if err := os.Remove(filepath.Join(dir, "history.json")); err != nil {
		t.Fatalf("删除快照文件失败: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "history.json"), 0755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}

	updated, err := store.Append(Record{ID: "b"})
	if err == nil {
		t.Fatal("写盘失败时 Append 应返回错误")
	}
	// 内存状态仍然有效
	if len(updated) != 2 {
		t.Fatalf("写盘失败后内存列表应有 2 条，得到 %d 条", len(updated))
	}
	if _, err := store.Get("b"); err != nil {
		t.Errorf("写盘失败后纪录仍应可查: %v", err)
	}
}

func TestStoreConcurrency(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Append(Record{Text: fmt.Sprintf("text-%d", i)})
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.List()
		}()
	}

	wg.Wait()
	if store.Len() != 10 {
		t.Fatalf("并发追加后期望 10 条，得到 %d 条", store.Len())
	}
}
