package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taigitts/internal/history"
	"taigitts/internal/logger"
	"taigitts/internal/tts"
)

// Server 对外提供 Web 界面和 JSON API。
type Server struct {
	handler         *Handler
	audioDirPath    string
	playbackEnabled bool
	maxEntries      int
	srv             *http.Server
}

// New 创建 HTTP 服务。
func New(handler *Handler, audioDirPath string, playbackEnabled bool, maxEntries int) *Server {
	return &Server{
		handler:         handler,
		audioDirPath:    audioDirPath,
		playbackEnabled: playbackEnabled,
		maxEntries:      maxEntries,
	}
}

// routes 注册所有路由。
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/tts", s.handleTTS)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/item", s.handleHistoryItem)
	mux.HandleFunc("/api/history/clear", s.handleHistoryClear)
	mux.HandleFunc("/api/play", s.handlePlay)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.audioDirPath))))
	mux.HandleFunc("/", s.handleIndex)

	return mux
}

// Start 在指定地址上启动服务，阻塞直到服务退出。
func (s *Server) Start(listen string) error {
	mux := s.routes()

	s.srv = &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // 合成调用可能较慢
		IdleTimeout:  60 * time.Second,
	}

	logger.Infof("[server] 服务已启动: http://localhost%s", listen)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown 优雅关闭服务。
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// recordView 历史纪录的展示形态，附带截断后的文本预览。
type recordView struct {
	history.Record
	Preview string `json:"preview"`
}

func newRecordView(rec history.Record) recordView {
	return recordView{Record: rec, Preview: formatPreview(rec.Text)}
}

func (s *Server) historyViews() []recordView {
	entries := s.handler.History()
	views := make([]recordView, len(entries))
	for i, rec := range entries {
		views[i] = newRecordView(rec)
	}
	return views
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := indexData{
		Models:          s.handler.Models(),
		History:         s.historyViews(),
		PlaybackEnabled: s.playbackEnabled,
		MaxEntries:      s.maxEntries,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logger.Errorf("[server] 渲染首页失败: %v", err)
	}
}

// ttsRequest POST /api/tts 的请求体。
type ttsRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 POST")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "請求格式錯誤")
		return
	}

	result, err := s.handler.Convert(r.Context(), req.Text, req.Model)
	if err != nil {
		var status int
		var apiErr *tts.APIError
		switch {
		case errors.Is(err, ErrEmptyText), errors.Is(err, ErrUnknownModel):
			status = http.StatusBadRequest
		case errors.As(err, &apiErr):
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
		logger.Warnf("[server] 合成失败: %v", err)
		writeError(w, status, err.Error())
		return
	}

	views := make([]recordView, len(result.History))
	for i, rec := range result.History {
		// 展示时最新在前
		views[len(result.History)-1-i] = newRecordView(rec)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":  newRecordView(result.Record),
		"history": views,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": s.historyViews(),
	})
}

func (s *Server) handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	rec, err := s.handler.Replay(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "找不到指定的歷史紀錄")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": newRecordView(rec),
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 POST")
		return
	}
	if err := s.handler.Clear(); err != nil {
		logger.Warnf("[server] 清空历史失败: %v", err)
		writeError(w, http.StatusInternalServerError, "清除紀錄失敗")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": []recordView{}})
}

// playRequest POST /api/play 的请求体。
type playRequest struct {
	ID string `json:"id"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 POST")
		return
	}
	if !s.playbackEnabled {
		writeError(w, http.StatusBadRequest, "本機播放未啟用")
		return
	}

	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "請求格式錯誤")
		return
	}

	if err := s.handler.Play(r.Context(), req.ID); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "找不到指定的歷史紀錄")
			return
		}
		logger.Warnf("[server] 本机播放失败: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("播放失敗：%v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"models":   s.handler.Models(),
		"history":  len(s.handler.History()),
		"playback": s.playbackEnabled,
	})
}

// formatPreview 折叠空白并截断文本，用于历史列表展示。
func formatPreview(text string) string {
	const limit = 48
	preview := strings.Join(strings.Fields(text), " ")
	runes := []rune(preview)
	if len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return preview
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("[server] 编码响应失败: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
