package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taigitts/internal/audio"
	"taigitts/internal/history"
	"taigitts/internal/tts"
)

func newTestServer(t *testing.T, engine tts.Engine) (*Server, *history.Store) {
	t.Helper()

	store, _ := history.NewStore(t.TempDir(), 50)
	dir, _ := audio.NewDir(t.TempDir())
	reg := &tts.Registry{}
	reg.Register("model6", engine)

	handler := NewHandler(store, reg, dir, nil)
	return New(handler, dir.Path(), false, 50), store
}

type ttsResponse struct {
	Record  recordView   `json:"record"`
	History []recordView `json:"history"`
	Error   string       `json:"error"`
}

func postTTS(t *testing.T, mux http.Handler, body string) (*httptest.ResponseRecorder, ttsResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var resp ttsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v (%s)", err, rr.Body.String())
	}
	return rr, resp
}

func TestHandleTTSSuccess(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{
		AudioURL: "https://example.com/a.wav",
		Tailo:    "lí-hó",
		Message:  "合成完成",
	}}
	srv, store := newTestServer(t, engine)
	mux := srv.routes()

	rr, resp := postTTS(t, mux, `{"text":"你好","model":"model6"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("期望 200，得到 %d: %s", rr.Code, rr.Body.String())
	}
	if resp.Record.AudioURL != "https://example.com/a.wav" {
		t.Errorf("音频地址不匹配: %s", resp.Record.AudioURL)
	}
	if resp.Record.Preview != "你好" {
		t.Errorf("预览不匹配: %s", resp.Record.Preview)
	}
	if len(resp.History) != 1 {
		t.Fatalf("历史应有 1 条，得到 %d 条", len(resp.History))
	}
	if store.Len() != 1 {
		t.Fatalf("存储应有 1 条，得到 %d 条", store.Len())
	}
}

func TestHandleTTSAPIError(t *testing.T) {
	engine := &stubEngine{err: &tts.APIError{Status: 502, Detail: "upstream down"}}
	srv, store := newTestServer(t, engine)
	mux := srv.routes()

	rr, resp := postTTS(t, mux, `{"text":"你好","model":"model6"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("期望 502，得到 %d", rr.Code)
	}
	if resp.Error == "" {
		t.Error("错误信息不应为空")
	}
	if store.Len() != 0 {
		t.Fatalf("API 失败后存储长度应不变，得到 %d 条", store.Len())
	}
}

func TestHandleTTSEmptyText(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, _ := newTestServer(t, engine)
	mux := srv.routes()

	rr, resp := postTTS(t, mux, `{"text":"  ","model":"model6"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，得到 %d", rr.Code)
	}
	if resp.Error == "" {
		t.Error("错误信息不应为空")
	}
}

func TestHandleHistoryNewestFirst(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, _ := newTestServer(t, engine)
	mux := srv.routes()

	_, _ = postTTS(t, mux, `{"text":"第一句","model":"model6"}`)
	_, _ = postTTS(t, mux, `{"text":"第二句","model":"model6"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	var resp ttsResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if len(resp.History) != 2 {
		t.Fatalf("期望 2 条，得到 %d 条", len(resp.History))
	}
	if resp.History[0].Text != "第二句" {
		t.Errorf("最新纪录应排在最前: %s", resp.History[0].Text)
	}
}

func TestHandleHistoryItemNotFound(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, _ := newTestServer(t, engine)
	mux := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/history/item?id=not_exist", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("期望 404，得到 %d", rr.Code)
	}
}

func TestHandleHistoryClear(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, store := newTestServer(t, engine)
	mux := srv.routes()

	_, _ = postTTS(t, mux, `{"text":"你好","model":"model6"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/history/clear", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("期望 200，得到 %d", rr.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("清空后存储应为空，得到 %d 条", store.Len())
	}
}

func TestHandlePlayDisabled(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, _ := newTestServer(t, engine)
	mux := srv.routes()

	req := httptest.NewRequest(http.MethodPost, "/api/play", strings.NewReader(`{"id":"x"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("未启用播放时期望 400，得到 %d", rr.Code)
	}
}

func TestHandleIndex(t *testing.T) {
	engine := &stubEngine{result: &tts.Result{AudioURL: "x"}}
	srv, _ := newTestServer(t, engine)
	mux := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("期望 200，得到 %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "台語文字轉語音") {
		t.Error("首页应包含标题")
	}
	if !strings.Contains(body, "model6") {
		t.Error("首页应包含模型下拉选项")
	}
}

func TestFormatPreview(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"短文本", "你好", "你好"},
		{"折叠空白", "你好\n  世界", "你好 世界"},
		{"恰好上限", strings.Repeat("a", 48), strings.Repeat("a", 48)},
		{"超出上限", strings.Repeat("b", 60), strings.Repeat("b", 45) + "..."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatPreview(c.in); got != c.want {
				t.Errorf("formatPreview(%q) = %q, 期望 %q", c.in, got, c.want)
			}
		})
	}
}
