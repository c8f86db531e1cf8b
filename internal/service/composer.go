package service

import (
	"github.com/KarlYu130/DeepSite/internal/model"
)

// DefaultSystemPrompt 约束模型只产出单文件 HTML 页面
const DefaultSystemPrompt = `ONLY USE HTML, CSS AND JAVASCRIPT. If you want to use ICON make sure to import the library first. Try to create the best UI possible by using only HTML, CSS and JAVASCRIPT. Use as much as you can TailwindCSS for the CSS, if you can't do something with TailwindCSS, then use custom css (make sure to import <script src="https://cdn.tailwindcss.com"></script> in the head). Also, try to elaborate as much as you can, to create something unique. ALWAYS GIVE THE RESPONSE INTO A SINGLE HTML FILE`

// currentCodePrefix 迭代修改时把当前页面作为 assistant 消息带回
const currentCodePrefix = "The current code is: "

// BuildMessages 把一次生成请求组装成补全接口的消息序列。
// 纯函数：相同输入得到相同序列，可选字段缺省时对应消息整体省略。
func BuildMessages(req model.AskRequest) []model.Message {
	messages := make([]model.Message, 0, 4)

	messages = append(messages, model.SystemMessage(DefaultSystemPrompt))

	if req.PreviousPrompt != "" {
		messages = append(messages, model.UserMessage(req.PreviousPrompt))
	}

	if req.HTML != "" {
		messages = append(messages, model.AssistantMessage(currentCodePrefix+req.HTML))
	}

	messages = append(messages, model.UserMessage(req.Prompt))

	return messages
}
