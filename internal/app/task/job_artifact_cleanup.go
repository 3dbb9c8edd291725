/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-10 15:02:41
 * @LastEditTime: 2025-11-19 10:15:22
 * @LastEditors: 安知鱼
 */
package task

import (
	"log"
	"time"

	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// ArtifactCleanupJob 负责回收暂存目录中超龄的转换产物。
// 输入文件在每次任务结束时已被删除，这里清理的是客户端一直没有取回的产物，
// 以及异常中断遗留的残片。
type ArtifactCleanupJob struct {
	store     *artifact.LocalStore
	retention time.Duration
}

// NewArtifactCleanupJob 是任务的构造函数
func NewArtifactCleanupJob(store *artifact.LocalStore, retention time.Duration) *ArtifactCleanupJob {
	return &ArtifactCleanupJob{
		store:     store,
		retention: retention,
	}
}

// Run 是 Job 接口要求实现的方法
func (j *ArtifactCleanupJob) Run() {
	removed, err := j.store.SweepOlderThan(j.retention)
	if err != nil {
		log.Printf("任务 '%s' 在执行业务逻辑时捕获到错误: %v", j.Name(), err)
		return
	}
	log.Printf("任务 '%s' 业务逻辑执行完毕，共清理了 %d 个文件。", j.Name(), removed)
}

// Name 方法让日志包装器可以打印出更有意义的任务名
func (j *ArtifactCleanupJob) Name() string {
	return "ArtifactCleanupJob"
}
