/*
 * @Description: 任务级资源作用域：记录一次转换内预留的产物与中间文件，
 *               失败时统一丢弃产物，结束时统一清理中间文件。
 * @Author: 安知鱼
 * @Date: 2025-09-03 10:18:27
 * @LastEditTime: 2025-11-02 22:49:10
 * @LastEditors: 安知鱼
 */
package artifact

import (
	"fmt"
	"log"
	"os"

	"github.com/adammamod416/ToolX/pkg/constant"
)

// Scope 包装 Store 提供给转换处理函数。
// 处理函数通过它申请输出路径，执行器据此掌握任务产生的全部文件：
// 成功时保留产物，失败时不会遗留任何半成品。
type Scope struct {
	store    Store
	outputs  []string
	temps    []string
	workDirs []string
}

// NewScope 创建一个空的任务作用域。
func NewScope(store Store) *Scope {
	return &Scope{store: store}
}

// ReserveOutput 申请一个产物路径并记录在作用域内。
func (s *Scope) ReserveOutput(prefix, ext string) (string, error) {
	path, err := s.store.ReserveOutputPath(prefix, ext)
	if err != nil {
		return "", err
	}
	s.outputs = append(s.outputs, path)
	return path, nil
}

// ReserveTemp 申请一个中间文件路径。中间文件无论成败都会被清理。
func (s *Scope) ReserveTemp(prefix, ext string) (string, error) {
	path, err := s.store.ReserveOutputPath(prefix, ext)
	if err != nil {
		return "", err
	}
	s.temps = append(s.temps, path)
	return path, nil
}

// WorkDir 在暂存目录下创建一个任务级工作子目录，任务结束时整体删除。
func (s *Scope) WorkDir(pattern string) (string, error) {
	dir, err := os.MkdirTemp(s.store.Dir(), pattern)
	if err != nil {
		return "", fmt.Errorf("%w: 创建工作目录失败: %v", constant.ErrResource, err)
	}
	s.workDirs = append(s.workDirs, dir)
	return dir, nil
}

// PublicURL 暴露存储的地址派生能力，供需要逐文件报告下载地址的处理函数使用。
func (s *Scope) PublicURL(path string) string {
	return s.store.PublicURL(path)
}

// DiscardOutputs 删除作用域内记录的全部产物，用于失败路径。
func (s *Scope) DiscardOutputs() {
	for _, path := range s.outputs {
		if err := s.store.Release(path); err != nil {
			log.Printf("[ArtifactScope] 丢弃产物 %s 失败: %v", path, err)
		}
	}
	s.outputs = nil
}

// Cleanup 清理中间文件与工作目录，成功与失败路径都要执行。
func (s *Scope) Cleanup() {
	for _, path := range s.temps {
		if err := s.store.Release(path); err != nil {
			log.Printf("[ArtifactScope] 清理中间文件 %s 失败: %v", path, err)
		}
	}
	s.temps = nil
	for _, dir := range s.workDirs {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("[ArtifactScope] 清理工作目录 %s 失败: %v", dir, err)
		}
	}
	s.workDirs = nil
}
