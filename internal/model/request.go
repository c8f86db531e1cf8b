package model

import "strings"

// AskRequest 一次生成请求。HTML 为当前页面内容（迭代修改时携带），
// PreviousPrompt 为上一轮的用户请求，Provider 可覆盖默认模型标识。
type AskRequest struct {
	Prompt         string `json:"prompt"`
	HTML           string `json:"html"`
	PreviousPrompt string `json:"previousPrompt"`
	Provider       string `json:"provider"`
}

func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// DeployRequest 发布请求。Path 为空表示新建站点（此时必须提供 Title），
// 非空表示向已有站点重新发布。Prompts 为生成该页面的提示词历史。
type DeployRequest struct {
	HTML    string   `json:"html"`
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	Prompts []string `json:"prompts"`
}

func (r *DeployRequest) Validate() error {
	if strings.TrimSpace(r.HTML) == "" {
		return ErrMissingHTML
	}
	if strings.TrimSpace(r.Path) == "" && strings.TrimSpace(r.Title) == "" {
		return ErrMissingTarget
	}
	return nil
}
