package tts

import "fmt"

// APIError 表示一次对远程 TTS 服务的失败调用。
// Error() 返回可以直接展示给用户的信息。
type APIError struct {
	Status int    // HTTP 状态码，连线失败时为 0
	Detail string // 错误细节（响应正文截断或底层错误）
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("TTS API 呼叫失敗 (HTTP %d): %s", e.Status, e.Detail)
	}
	return e.Detail
}
