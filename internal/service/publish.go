package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/KarlYu130/DeepSite/internal/model"
	"github.com/KarlYu130/DeepSite/internal/spaces"
	"github.com/KarlYu130/DeepSite/pkg/logger"
)

const (
	maxSlugLength = 96
	siteTag       = "deepsite"

	// remixBaseURL 署名里的 remix 链接前缀，也用来识别页面是否已带署名
	remixBaseURL = "https://enzostvs-deepsite.hf.space?remix="
)

// readmeColors 站点卡片可选的主题色板
var readmeColors = []string{"red", "yellow", "green", "blue", "indigo", "purple", "pink", "gray"}

// attributionFmt 固定的页脚署名，%s 为站点命名空间
const attributionFmt = `<p style="border-radius: 8px; text-align: center; font-size: 12px; color: #fff; margin-top: 16px; position: fixed; left: 8px; bottom: 8px; z-index: 10; background: rgba(0, 0, 0, 0.8); padding: 4px 8px;">Made with <a href="https://enzostvs-deepsite.hf.space" style="color: #fff; text-decoration: underline;" target="_blank">DeepSite</a> - 🧬 <a href="` + remixBaseURL + `%s" style="color: #fff; text-decoration: underline;" target="_blank">Remix</a></p>`

// HubClient 发布流程依赖的仓库托管能力
type HubClient interface {
	WhoAmI(ctx context.Context, token string) (string, error)
	CreateSpace(ctx context.Context, token, name string) error
	UploadFiles(ctx context.Context, token, namespace string, files []spaces.File) error
}

// PublishService 把生成的页面发布为托管静态站点
type PublishService struct {
	hub HubClient
}

func NewPublishService(hub HubClient) *PublishService {
	return &PublishService{hub: hub}
}

// Publish 执行完整发布流程并返回站点命名空间 {账号}/{站点}。
// Path 为空表示新建：解析账号、推导 slug、创建仓库并生成站点卡片；
// 非空表示向已有站点重新发布。所有文件在一次上传中提交，任何一步
// 失败整个发布视为失败，不产生部分成功。
func (s *PublishService) Publish(ctx context.Context, token string, req model.DeployRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrMissingToken
	}

	namespace := strings.TrimSpace(req.Path)
	isNew := namespace == ""

	files := make([]spaces.File, 0, 3)

	if isNew {
		slug := Slugify(req.Title)
		if slug == "" {
			return "", model.ErrMissingTarget
		}

		account, err := s.hub.WhoAmI(ctx, token)
		if err != nil {
			return "", fmt.Errorf("resolve account: %w", err)
		}
		namespace = account + "/" + slug

		if err := s.hub.CreateSpace(ctx, token, slug); err != nil {
			return "", fmt.Errorf("create space %s: %w", namespace, err)
		}

		files = append(files, spaces.File{
			Path:    "README.md",
			Content: []byte(buildReadme(req.Title)),
		})
	}

	files = append(files, spaces.File{
		Path:    "index.html",
		Content: []byte(InjectAttribution(req.HTML, namespace)),
	})
	files = append(files, spaces.File{
		Path:    "prompts.txt",
		Content: []byte(strings.Join(req.Prompts, "\n")),
	})

	if err := s.hub.UploadFiles(ctx, token, namespace, files); err != nil {
		return "", fmt.Errorf("upload to %s: %w", namespace, err)
	}

	logger.Infof("站点发布成功: %s", namespace)
	return namespace, nil
}

// Slugify 把标题转成站点名：小写、非字母数字折叠成单个连字符、
// 去掉首尾分隔符并截断到最大长度。对自身幂等。
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// InjectAttribution 在 </body> 前插入页脚署名。页面已带署名或没有
// </body> 时原样返回，重复发布不会叠加。
func InjectAttribution(html, namespace string) string {
	if strings.Contains(html, remixBaseURL) {
		return html
	}
	if !strings.Contains(html, "</body>") {
		return html
	}

	fragment := fmt.Sprintf(attributionFmt, namespace)
	return strings.Replace(html, "</body>", fragment+"</body>", 1)
}

// buildReadme 生成站点卡片元数据，主题色从固定色板随机取两个
func buildReadme(title string) string {
	colorFrom := readmeColors[rand.Intn(len(readmeColors))]
	colorTo := readmeColors[rand.Intn(len(readmeColors))]

	return fmt.Sprintf(`---
title: %s
emoji: 🐳
colorFrom: %s
colorTo: %s
sdk: static
pinned: false
tags:
  - %s
---

# %s

Generated with DeepSite.
`, title, colorFrom, colorTo, siteTag, title)
}
