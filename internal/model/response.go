package model

// DeployResponse 发布成功的响应，Path 为 {账号}/{站点} 命名空间
type DeployResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

// APIError 统一的 JSON 错误响应体
type APIError struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func NewAPIError(message string) APIError {
	return APIError{OK: false, Message: message}
}
