/*
 * @Description: 使用 Go 原生图像库实现的图片转换操作（压缩/缩放/格式转换）。
 * @Author: 安知鱼
 * @Date: 2025-09-04 09:12:33
 * @LastEditTime: 2025-12-19 14:08:50
 * @LastEditors: 安知鱼
 */
package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageTransformer 用纯 Go 库实现图片域的三个操作。
// webp/bmp 等格式通过 x/image 的解码器支持读取，输出格式以 imaging 可编码的为准。
type ImageTransformer struct{}

func NewImageTransformer() *ImageTransformer {
	return &ImageTransformer{}
}

// Register 把图片域的操作注册到注册表。
func (t *ImageTransformer) Register(reg *Registry) {
	reg.Register(Descriptor{
		Operation:      OpImageCompress,
		MinInputs:      1,
		MaxInputs:      1,
		ReportSavings:  true,
		SizeUnit:       "KB",
		SuccessMessage: "图片压缩成功",
		Handler:        t.compress,
	})
	reg.Register(Descriptor{
		Operation:      OpImageResize,
		MinInputs:      1,
		MaxInputs:      1,
		SuccessMessage: "图片尺寸调整成功",
		Handler:        t.resize,
	})
	reg.Register(Descriptor{
		Operation: OpImageConvert,
		MinInputs: 1,
		MaxInputs: 1,
		Handler:   t.convert,
	})
}

// compress 把图片重新编码为指定质量的 JPEG。
func (t *ImageTransformer) compress(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	p, ok := params.(ImageCompressParams)
	if !ok {
		return nil, fmt.Errorf("%w: 参数类型与操作不匹配", constant.ErrValidation)
	}

	img, err := imaging.Open(inputs[0].StoragePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片失败: %v", constant.ErrTransformation, err)
	}

	out, err := scope.ReserveOutput("compressed", "jpg")
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(img, out, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("%w: 编码图片失败: %v", constant.ErrTransformation, err)
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindImage}},
	}, nil
}

// resize 把图片等比缩放进 width x height 的边界框内，不放大小图。
// 与原始工具 fit: inside + withoutEnlargement 的行为一致。
func (t *ImageTransformer) resize(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	p, ok := params.(ImageResizeParams)
	if !ok {
		return nil, fmt.Errorf("%w: 参数类型与操作不匹配", constant.ErrValidation)
	}

	img, err := imaging.Open(inputs[0].StoragePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片失败: %v", constant.ErrTransformation, err)
	}

	resized := imaging.Fit(img, p.Width, p.Height, imaging.Lanczos)

	out, err := scope.ReserveOutput("resized", "jpg")
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(resized, out); err != nil {
		return nil, fmt.Errorf("%w: 编码图片失败: %v", constant.ErrTransformation, err)
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindImage}},
		Extra: map[string]interface{}{
			"dimensions": fmt.Sprintf("%dx%d", p.Width, p.Height),
		},
	}, nil
}

// convert 把图片重新编码为目标格式，格式由输出扩展名决定。
func (t *ImageTransformer) convert(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	p, ok := params.(ImageConvertParams)
	if !ok {
		return nil, fmt.Errorf("%w: 参数类型与操作不匹配", constant.ErrValidation)
	}

	img, err := imaging.Open(inputs[0].StoragePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片失败: %v", constant.ErrTransformation, err)
	}

	out, err := scope.ReserveOutput("converted", p.Format)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(img, out); err != nil {
		return nil, fmt.Errorf("%w: 编码图片失败: %v", constant.ErrTransformation, err)
	}

	upper := strings.ToUpper(p.Format)
	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindImage}},
		Extra:     map[string]interface{}{"format": upper},
		Message:   fmt.Sprintf("图片已成功转换为 %s 格式", upper),
	}, nil
}
