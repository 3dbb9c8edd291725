/*
 * @Description: 临时产物存储：管理上传输入与转换产物的暂存目录。
 *               负责免冲突路径分配、幂等删除、下载令牌解析与超龄回收。
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:40:12
 * @LastEditTime: 2025-12-08 15:21:40
 * @LastEditors: 安知鱼
 */
package artifact

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/idgen"
)

// Store 定义执行器与处理函数对暂存目录的全部依赖。
// 单测里可以用 spy 实现来断言“校验失败时存储从未被触达”。
type Store interface {
	// ReserveInputPath 为一个上传输入分配免冲突路径，不创建文件
	ReserveInputPath(originalName string) (string, error)
	// ReserveOutputPath 为一个转换产物分配免冲突路径，不创建文件
	ReserveOutputPath(prefix, ext string) (string, error)
	// Release 删除路径指向的文件，文件不存在时静默成功
	Release(path string) error
	// PublicRef 由产物路径派生下载令牌
	PublicRef(path string) string
	// PublicURL 由产物路径派生完整下载地址
	PublicURL(path string) string
	// Resolve 将下载令牌解析为暂存目录内的现存文件路径
	Resolve(token string) (string, error)
	// Dir 返回暂存目录根路径，供处理函数创建任务级工作子目录
	Dir() string
}

// LocalStore 是 Store 的本地磁盘实现。
// 并发安全性来自免冲突命名（时间戳+随机片段），不需要加锁。
type LocalStore struct {
	baseDir string
}

// NewLocalStore 创建暂存目录并返回本地存储实例。
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: 创建暂存目录失败: %v", constant.ErrResource, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Dir() string {
	return s.baseDir
}

// ReserveInputPath 生成 input-<时间戳>-<uuid><原扩展名> 形式的路径。
func (s *LocalStore) ReserveInputPath(originalName string) (string, error) {
	if err := s.ensureWritable(); err != nil {
		return "", err
	}
	ext := sanitizeExt(filepath.Ext(originalName))
	name := fmt.Sprintf("input-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	return filepath.Join(s.baseDir, name), nil
}

// ReserveOutputPath 生成 <前缀>-<唯一片段>.<扩展名> 形式的路径。
func (s *LocalStore) ReserveOutputPath(prefix, ext string) (string, error) {
	if err := s.ensureWritable(); err != nil {
		return "", err
	}
	slug, err := idgen.NewSlug()
	if err != nil {
		return "", fmt.Errorf("%w: %v", constant.ErrResource, err)
	}
	name := fmt.Sprintf("%s-%s.%s", prefix, slug, strings.TrimPrefix(ext, "."))
	return filepath.Join(s.baseDir, name), nil
}

// Release 删除文件，重复删除不报错。
func (s *LocalStore) Release(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除临时文件 %s 失败: %w", filepath.Base(path), err)
	}
	return nil
}

// PublicRef 的令牌就是产物文件名：由存储生成、保证唯一且不含路径分隔符。
func (s *LocalStore) PublicRef(path string) string {
	return filepath.Base(path)
}

func (s *LocalStore) PublicURL(path string) string {
	return "/uploads/" + s.PublicRef(path)
}

// Resolve 在拼接路径之前先拒绝一切带路径语义的令牌，防止目录穿越。
func (s *LocalStore) Resolve(token string) (string, error) {
	if token == "" ||
		strings.ContainsAny(token, `/\`) ||
		strings.Contains(token, "..") {
		return "", constant.ErrNotFound
	}
	path := filepath.Join(s.baseDir, token)
	if _, err := os.Stat(path); err != nil {
		return "", constant.ErrNotFound
	}
	return path, nil
}

// SweepOlderThan 删除暂存目录中修改时间早于 maxAge 的文件，返回删除数量。
// 由定时任务调用，用于回收客户端不再取回的产物。
func (s *LocalStore) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("读取暂存目录失败: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		target := filepath.Join(s.baseDir, entry.Name())
		if entry.IsDir() {
			// 任务级工作子目录（如 PDF 拆分）正常情况下随任务删除，
			// 留到这里说明任务异常中断
			if err := os.RemoveAll(target); err != nil {
				log.Printf("[ArtifactStore] 清理残留工作目录 %s 失败: %v", entry.Name(), err)
				continue
			}
			removed++
			continue
		}
		if err := os.Remove(target); err != nil {
			log.Printf("[ArtifactStore] 清理超龄文件 %s 失败: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// ensureWritable 确认暂存目录仍然存在且可写。
// 目录被删除或磁盘只读时，预留路径的请求直接以资源错误失败，不做重试。
func (s *LocalStore) ensureWritable() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("%w: 暂存目录不可用: %v", constant.ErrResource, err)
	}
	probe := filepath.Join(s.baseDir, ".probe-"+uuid.NewString())
	f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: 暂存目录不可写: %v", constant.ErrResource, err)
	}
	f.Close()
	_ = os.Remove(probe)
	return nil
}

// sanitizeExt 只保留安全的扩展名字符，异常输入回退为空。
func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || ext == "." || strings.ContainsAny(ext, `/\`) || strings.Contains(ext, "..") {
		return ""
	}
	return ext
}

// CheckUpload 在落盘之前校验上传文件的扩展名与大小。
// 不通过的文件不会触碰存储。
func CheckUpload(fh *multipart.FileHeader, allowedExts map[string]bool, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return fmt.Errorf("%w: 不支持的文件类型 '%s'", constant.ErrValidation, ext)
	}
	if maxSize > 0 && fh.Size > maxSize {
		return fmt.Errorf("%w: 文件大小超过限制（最大 %d MB）", constant.ErrValidation, maxSize/(1024*1024))
	}
	return nil
}

// SaveMultipart 把一个多部分表单文件落盘到存储分配的输入路径，
// 返回可交给执行器的 UploadedInput。失败时不留半截文件。
func SaveMultipart(store Store, fh *multipart.FileHeader) (model.UploadedInput, error) {
	path, err := store.ReserveInputPath(fh.Filename)
	if err != nil {
		return model.UploadedInput{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return model.UploadedInput{}, fmt.Errorf("%w: 读取上传文件失败: %v", constant.ErrValidation, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return model.UploadedInput{}, fmt.Errorf("%w: 写入临时文件失败: %v", constant.ErrResource, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = store.Release(path)
		return model.UploadedInput{}, fmt.Errorf("%w: 写入临时文件失败: %v", constant.ErrResource, err)
	}
	if err := dst.Close(); err != nil {
		_ = store.Release(path)
		return model.UploadedInput{}, fmt.Errorf("%w: 写入临时文件失败: %v", constant.ErrResource, err)
	}

	return model.UploadedInput{
		OriginalName: fh.Filename,
		SizeBytes:    fh.Size,
		StoragePath:  path,
		MimeHint:     fh.Header.Get("Content-Type"),
	}, nil
}
