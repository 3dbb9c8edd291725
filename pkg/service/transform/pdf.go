/*
 * @Description: 基于 pdfcpu 实现的 PDF 操作（图片合成/合并/拆分/压缩）。
 * @Author: 安知鱼
 * @Date: 2025-09-04 11:40:21
 * @LastEditTime: 2026-01-12 10:27:44
 * @LastEditors: 安知鱼
 */
package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// importableExts 是 pdfcpu 能直接嵌入 PDF 的图片格式。
var importableExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".tif": true, ".tiff": true,
}

// PdfTransformer 用 pdfcpu 实现 PDF 域的四个操作。
type PdfTransformer struct{}

func NewPdfTransformer() *PdfTransformer {
	return &PdfTransformer{}
}

// Register 把 PDF 域的操作注册到注册表。
func (t *PdfTransformer) Register(reg *Registry) {
	reg.Register(Descriptor{
		Operation:      OpPdfImagesToPdf,
		MinInputs:      1,
		MaxInputs:      10,
		SuccessMessage: "图片已成功合成为 PDF",
		Handler:        t.imagesToPdf,
	})
	reg.Register(Descriptor{
		Operation:      OpPdfMerge,
		MinInputs:      2,
		MaxInputs:      10,
		SuccessMessage: "PDF 文件合并成功",
		Handler:        t.merge,
	})
	reg.Register(Descriptor{
		Operation:      OpPdfSplit,
		MinInputs:      1,
		MaxInputs:      1,
		SuccessMessage: "PDF 文件拆分成功",
		Handler:        t.split,
	})
	reg.Register(Descriptor{
		Operation:      OpPdfCompress,
		MinInputs:      1,
		MaxInputs:      1,
		ReportSavings:  true,
		SizeUnit:       "KB",
		SuccessMessage: "PDF 文件压缩成功",
		Handler:        t.compress,
	})
}

// imagesToPdf 把每张图片作为一页合成一个 PDF。
// pdfcpu 不认识的图片格式先用 imaging 转成 JPEG 中间文件。
func (t *PdfTransformer) imagesToPdf(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	imgFiles := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ext := strings.ToLower(filepath.Ext(in.OriginalName))
		if importableExts[ext] {
			imgFiles = append(imgFiles, in.StoragePath)
			continue
		}

		img, err := imaging.Open(in.StoragePath, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: 解码图片 %s 失败: %v", constant.ErrTransformation, in.OriginalName, err)
		}
		tmp, err := scope.ReserveTemp("page", "jpg")
		if err != nil {
			return nil, err
		}
		if err := imaging.Save(img, tmp); err != nil {
			return nil, fmt.Errorf("%w: 转换图片 %s 失败: %v", constant.ErrTransformation, in.OriginalName, err)
		}
		imgFiles = append(imgFiles, tmp)
	}

	out, err := scope.ReserveOutput("images-to-pdf", "pdf")
	if err != nil {
		return nil, err
	}
	if err := api.ImportImagesFile(imgFiles, out, nil, nil); err != nil {
		return nil, fmt.Errorf("%w: 合成 PDF 失败: %v", constant.ErrTransformation, err)
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindPDF}},
		Extra:     map[string]interface{}{"pageCount": len(inputs)},
	}, nil
}

// merge 按上传顺序合并多个 PDF。
func (t *PdfTransformer) merge(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	paths := make([]string, len(inputs))
	for i, in := range inputs {
		paths[i] = in.StoragePath
	}

	out, err := scope.ReserveOutput("merged", "pdf")
	if err != nil {
		return nil, err
	}
	if err := api.MergeCreateFile(paths, out, false, nil); err != nil {
		return nil, fmt.Errorf("%w: 合并 PDF 失败: %v", constant.ErrTransformation, err)
	}

	pages, err := api.PageCountFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: 统计页数失败: %v", constant.ErrTransformation, err)
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindPDF}},
		Extra:     map[string]interface{}{"totalPages": pages},
	}, nil
}

// split 把 PDF 的每一页拆成一个独立文件。
// pdfcpu 在工作目录里按自己的规则命名页文件，之后逐页改名到存储预留的产物路径，
// 保证命名仍由存储统一管理。
func (t *PdfTransformer) split(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	src := inputs[0].StoragePath

	pages, err := api.PageCountFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取 PDF 失败: %v", constant.ErrTransformation, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("%w: PDF 没有任何页面", constant.ErrTransformation)
	}

	workDir, err := scope.WorkDir("split-*")
	if err != nil {
		return nil, err
	}
	if err := api.SplitFile(src, workDir, 1, nil); err != nil {
		return nil, fmt.Errorf("%w: 拆分 PDF 失败: %v", constant.ErrTransformation, err)
	}

	pageFiles, err := collectSplitPages(workDir)
	if err != nil {
		return nil, err
	}
	if len(pageFiles) != pages {
		return nil, fmt.Errorf("%w: 拆分结果页数不符（期望 %d，得到 %d）", constant.ErrTransformation, pages, len(pageFiles))
	}

	artifacts := make([]model.Artifact, 0, pages)
	for i, pageFile := range pageFiles {
		out, err := scope.ReserveOutput(fmt.Sprintf("split-page-%d", i+1), "pdf")
		if err != nil {
			return nil, err
		}
		if err := os.Rename(pageFile, out); err != nil {
			return nil, fmt.Errorf("%w: 移动拆分页失败: %v", constant.ErrTransformation, err)
		}
		artifacts = append(artifacts, model.Artifact{StoragePath: out, ContentKind: model.KindPDF})
	}

	return &HandlerResult{
		Artifacts: artifacts,
		Extra:     map[string]interface{}{"totalPages": pages},
	}, nil
}

// compress 重写 PDF 并优化冗余对象与流。
func (t *PdfTransformer) compress(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	out, err := scope.ReserveOutput("compressed", "pdf")
	if err != nil {
		return nil, err
	}
	if err := api.OptimizeFile(inputs[0].StoragePath, out, nil); err != nil {
		return nil, fmt.Errorf("%w: 压缩 PDF 失败: %v", constant.ErrTransformation, err)
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindPDF}},
	}, nil
}

// collectSplitPages 按页号升序收集 pdfcpu 写出的页文件（命名形如 xxx_3.pdf）。
func collectSplitPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取拆分目录失败: %v", constant.ErrTransformation, err)
	}

	type pageFile struct {
		page int
		path string
	}
	pageFiles := make([]pageFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		base := strings.TrimSuffix(name, ".pdf")
		idx := strings.LastIndex(base, "_")
		if idx < 0 {
			continue
		}
		page, err := strconv.Atoi(base[idx+1:])
		if err != nil {
			continue
		}
		pageFiles = append(pageFiles, pageFile{page: page, path: filepath.Join(dir, name)})
	}

	sort.Slice(pageFiles, func(i, j int) bool {
		return pageFiles[i].page < pageFiles[j].page
	})

	paths := make([]string, len(pageFiles))
	for i, pf := range pageFiles {
		paths[i] = pf.path
	}
	return paths, nil
}
