/*
 * @Description: 文件转换流水线的领域模型。
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:02:19
 * @LastEditTime: 2025-10-21 14:37:55
 * @LastEditors: 安知鱼
 */
package model

// ContentKind 标识产物文件的内容类别。
type ContentKind string

const (
	KindImage ContentKind = "image"
	KindPDF   ContentKind = "pdf"
	KindAudio ContentKind = "audio"
	KindVideo ContentKind = "video"
)

// UploadedInput 代表一个已落盘的上传文件。
// StoragePath 在本次任务结束前由该输入独占，任务结束后文件无条件删除。
type UploadedInput struct {
	OriginalName string
	SizeBytes    int64
	StoragePath  string
	MimeHint     string
}

// Artifact 代表一次转换产出的文件。
// PublicRef 是下载端点使用的不透明令牌，在被回收或进程重启前保持有效。
type Artifact struct {
	StoragePath string
	SizeBytes   int64
	PublicRef   string
	ContentKind ContentKind
}

// TransformOutcome 是任务执行器装配好的成功结果：
// 操作相关的数据字段加上一条面向用户的文案。
type TransformOutcome struct {
	Data    map[string]interface{}
	Message string
}
