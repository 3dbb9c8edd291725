/*
 * @Description: 转换操作注册表：每个操作声明输入数量、参数结构与处理函数。
 * @Author: 安知鱼
 * @Date: 2025-09-03 14:02:55
 * @LastEditTime: 2025-12-10 11:36:08
 * @LastEditors: 安知鱼
 */
package transform

import (
	"context"
	"fmt"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// 已注册的操作标识，形式为 <域>.<动作>。
const (
	OpImageCompress = "image.compress"
	OpImageResize   = "image.resize"
	OpImageConvert  = "image.convert"

	OpPdfImagesToPdf = "pdf.imagesToPdf"
	OpPdfMerge       = "pdf.merge"
	OpPdfSplit       = "pdf.split"
	OpPdfCompress    = "pdf.compress"

	OpVideoExtractAudio = "video.extractAudio"
	OpVideoConvert      = "video.convert"
	OpVideoCompress     = "video.compress"
)

// Params 是各操作参数结构的公共接口。
// 每个操作都有自己的显式参数结构体，取代松散的 map，
// 让参数模式在编译期就有保障。
type Params interface {
	Validate() error
}

// NoParams 用于没有参数的操作。
type NoParams struct{}

func (NoParams) Validate() error { return nil }

// ImageCompressParams 是 image.compress 的参数。
type ImageCompressParams struct {
	Quality int
}

func (p ImageCompressParams) Validate() error {
	if p.Quality < 10 || p.Quality > 100 {
		return fmt.Errorf("%w: quality 必须在 10 到 100 之间", constant.ErrValidation)
	}
	return nil
}

// ImageResizeParams 是 image.resize 的参数。
type ImageResizeParams struct {
	Width  int
	Height int
}

func (p ImageResizeParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: width 和 height 必须是正整数", constant.ErrValidation)
	}
	return nil
}

// imageFormats 是 image.convert 支持的目标格式（imaging 可编码的格式）。
var imageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "tiff": true, "bmp": true,
}

// ImageConvertParams 是 image.convert 的参数。
type ImageConvertParams struct {
	Format string
}

func (p ImageConvertParams) Validate() error {
	if !imageFormats[p.Format] {
		return fmt.Errorf("%w: 不支持的图片格式 '%s'", constant.ErrValidation, p.Format)
	}
	return nil
}

// videoFormats 是 video.convert 支持的目标容器。
var videoFormats = map[string]bool{
	"mp4": true, "webm": true, "avi": true, "mov": true, "mkv": true,
}

// VideoConvertParams 是 video.convert 的参数。
type VideoConvertParams struct {
	Format string
}

func (p VideoConvertParams) Validate() error {
	if !videoFormats[p.Format] {
		return fmt.Errorf("%w: 不支持的视频格式 '%s'", constant.ErrValidation, p.Format)
	}
	return nil
}

// VideoCompressParams 是 video.compress 的参数，质量档位映射为 CRF。
type VideoCompressParams struct {
	Quality string
}

func (p VideoCompressParams) Validate() error {
	switch p.Quality {
	case "low", "medium", "high":
		return nil
	}
	return fmt.Errorf("%w: quality 只能是 low、medium 或 high", constant.ErrValidation)
}

// CRF 返回质量档位对应的 x264 CRF 值。
func (p VideoCompressParams) CRF() int {
	switch p.Quality {
	case "low":
		return 28
	case "high":
		return 18
	default:
		return 23
	}
}

// HandlerResult 是处理函数的返回值：按顺序排列的产物，
// 加上操作相关的附加数据（pageCount、format 等）和可选的成功文案。
type HandlerResult struct {
	Artifacts []model.Artifact
	Extra     map[string]interface{}
	Message   string
}

// HandlerFunc 执行一次具体转换。输入文件的读取、产物路径的申请
// 与写入都由它负责；输入的删除和失败时产物的丢弃由执行器保证。
type HandlerFunc func(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error)

// Descriptor 描述一个已注册的操作。
type Descriptor struct {
	Operation string
	// 输入文件数量区间，闭区间
	MinInputs int
	MaxInputs int
	// 是否在成功数据中报告 originalSize/compressedSize/savings
	ReportSavings bool
	// 体积统计的展示单位（KB 或 MB），与原始工具保持一致
	SizeUnit string
	// 无更具体文案时使用的成功提示
	SuccessMessage string
	Handler        HandlerFunc
}

// Registry 是操作标识到描述符的映射。
type Registry struct {
	ops map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Descriptor)}
}

// Register 注册一个操作，重复注册视为编程错误。
func (r *Registry) Register(d Descriptor) {
	if _, exists := r.ops[d.Operation]; exists {
		panic(fmt.Sprintf("操作 %s 重复注册", d.Operation))
	}
	r.ops[d.Operation] = d
}

// Lookup 按操作标识查找描述符。
func (r *Registry) Lookup(operation string) (Descriptor, bool) {
	d, ok := r.ops[operation]
	return d, ok
}
