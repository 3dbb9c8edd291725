/*
 * @Description: 负责处理 PDF 工具相关的HTTP请求。
 * @Author: 安知鱼
 * @Date: 2025-09-08 14:33:52
 * @LastEditTime: 2026-01-15 11:50:07
 * @LastEditors: 安知鱼
 */
package pdf_handler

import (
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/response"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
	"github.com/adammamod416/ToolX/pkg/service/transform"
)

// 上传数量上限，超出的请求在落盘之前就被拒绝。
const maxBatchFiles = 10

var pdfExts = map[string]bool{".pdf": true}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// PdfHandler 负责处理 PDF 域的四个转换端点。
type PdfHandler struct {
	store    artifact.Store
	executor *transform.Executor
	maxSize  int64
}

// NewPdfHandler 是 PdfHandler 的构造函数。
func NewPdfHandler(store artifact.Store, executor *transform.Executor, maxSize int64) *PdfHandler {
	return &PdfHandler{
		store:    store,
		executor: executor,
		maxSize:  maxSize,
	}
}

// ImagesToPdf 处理图片合成 PDF 的请求
// @Summary      图片合成 PDF
// @Tags         PDF 工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        images  formData  file  true  "图片文件（最多 10 个）"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /pdf/images-to-pdf [post]
func (h *PdfHandler) ImagesToPdf(c *gin.Context) {
	inputs, ok := h.saveUploads(c, "images", imageExts, "未上传任何图片")
	if !ok {
		return
	}
	h.execute(c, transform.OpPdfImagesToPdf, inputs)
}

// Merge 处理 PDF 合并请求
// @Summary      合并 PDF
// @Tags         PDF 工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdfs  formData  file  true  "PDF 文件（2 到 10 个）"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /pdf/merge [post]
func (h *PdfHandler) Merge(c *gin.Context) {
	inputs, ok := h.saveUploads(c, "pdfs", pdfExts, "未上传任何 PDF 文件")
	if !ok {
		return
	}
	h.execute(c, transform.OpPdfMerge, inputs)
}

// Split 处理 PDF 拆分请求
// @Summary      拆分 PDF
// @Tags         PDF 工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf  formData  file  true  "PDF 文件"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /pdf/split [post]
func (h *PdfHandler) Split(c *gin.Context) {
	inputs, ok := h.saveSingle(c, "pdf")
	if !ok {
		return
	}
	h.execute(c, transform.OpPdfSplit, inputs)
}

// Compress 处理 PDF 压缩请求
// @Summary      压缩 PDF
// @Tags         PDF 工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf  formData  file  true  "PDF 文件"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /pdf/compress [post]
func (h *PdfHandler) Compress(c *gin.Context) {
	inputs, ok := h.saveSingle(c, "pdf")
	if !ok {
		return
	}
	h.execute(c, transform.OpPdfCompress, inputs)
}

func (h *PdfHandler) execute(c *gin.Context, operation string, inputs []model.UploadedInput) {
	outcome, err := h.executor.Execute(c.Request.Context(), transform.Request{
		Operation: operation,
		Inputs:    inputs,
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, outcome.Data, outcome.Message)
}

// saveSingle 校验并落盘单个上传的 PDF。
func (h *PdfHandler) saveSingle(c *gin.Context, field string) ([]model.UploadedInput, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "未上传任何 PDF 文件")
		return nil, false
	}
	return h.persist(c, []*multipart.FileHeader{fh}, pdfExts)
}

// saveUploads 校验并落盘一组上传文件。
// 任何一个文件不合规时整个请求被拒绝，已落盘的文件全部回收。
func (h *PdfHandler) saveUploads(c *gin.Context, field string, exts map[string]bool, emptyMsg string) ([]model.UploadedInput, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, emptyMsg)
		return nil, false
	}
	files := form.File[field]
	if len(files) == 0 {
		response.Fail(c, http.StatusBadRequest, emptyMsg)
		return nil, false
	}
	if len(files) > maxBatchFiles {
		response.Fail(c, http.StatusBadRequest, "单次最多上传 10 个文件")
		return nil, false
	}
	return h.persist(c, files, exts)
}

func (h *PdfHandler) persist(c *gin.Context, files []*multipart.FileHeader, exts map[string]bool) ([]model.UploadedInput, bool) {
	for _, fh := range files {
		if err := artifact.CheckUpload(fh, exts, h.maxSize); err != nil {
			response.FailWithError(c, err)
			return nil, false
		}
	}

	inputs := make([]model.UploadedInput, 0, len(files))
	for _, fh := range files {
		input, err := artifact.SaveMultipart(h.store, fh)
		if err != nil {
			log.Printf("[PdfHandler] 保存上传文件失败: %v", err)
			// 本次已落盘的输入立即回收，不留孤儿文件
			for _, in := range inputs {
				_ = h.store.Release(in.StoragePath)
			}
			response.FailWithError(c, err)
			return nil, false
		}
		inputs = append(inputs, input)
	}
	return inputs, true
}
