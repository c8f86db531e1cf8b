package spaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/KarlYu130/DeepSite/internal/config"
	"github.com/KarlYu130/DeepSite/internal/utils"
	"github.com/KarlYu130/DeepSite/pkg/logger"
)

const (
	whoAmIPath     = "/api/whoami-v2"
	createRepoPath = "/api/repos/create"
	uploadPathFmt  = "/api/spaces/%s/upload"
)

// File 待上传的一个文件，Path 为空间内的相对路径
type File struct {
	Path    string
	Content []byte
}

// Client 托管空间（Spaces）接口客户端。所有调用都用请求方自己的
// token，服务端不持有任何长期凭证。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.HubConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: utils.NewHTTPClient(cfg.Timeout),
	}
}

// WhoAmI 解析 token 对应的账号名
func (c *Client) WhoAmI(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+whoAmIPath, nil)
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whoami: %s", readAPIError(resp))
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("whoami: decode response: %w", err)
	}
	if payload.Name == "" {
		return "", fmt.Errorf("whoami: empty account name")
	}

	return payload.Name, nil
}

// CreateSpace 在 token 对应的账号下创建静态站点仓库
func (c *Client) CreateSpace(ctx context.Context, token, name string) error {
	body, err := json.Marshal(map[string]interface{}{
		"name":    name,
		"type":    "space",
		"sdk":     "static",
		"private": false,
	})
	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createRepoPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create space: %s", readAPIError(resp))
	}

	logger.Infof("空间创建成功: %s", name)
	return nil
}

// UploadFiles 把所有文件打进一个 multipart 请求一次性上传，
// 要么全部提交要么整体失败，不会出现部分文件可见的中间状态。
func (c *Client) UploadFiles(ctx context.Context, token, namespace string, files []File) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Path)
		if err != nil {
			return fmt.Errorf("upload files: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("upload files: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("upload files: %w", err)
	}

	url := c.baseURL + fmt.Sprintf(uploadPathFmt, namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("upload files: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload files: %s", readAPIError(resp))
	}

	logger.Infof("文件上传成功: %s (%d 个文件)", namespace, len(files))
	return nil
}

// readAPIError 优先取响应体里的 error 字段，取不到则退回状态行
func readAPIError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	return resp.Status
}
