/*
 * @Description: 负责处理图片转换相关的HTTP请求。
 * @Author: 安知鱼
 * @Date: 2025-09-08 10:20:14
 * @LastEditTime: 2026-01-15 11:42:30
 * @LastEditors: 安知鱼
 */
package image_handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/response"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
	"github.com/adammamod416/ToolX/pkg/service/transform"
)

// imageExts 是图片端点接受的上传扩展名。
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// ImageHandler 负责处理图片域的三个转换端点。
type ImageHandler struct {
	store    artifact.Store
	executor *transform.Executor
	maxSize  int64
}

// NewImageHandler 是 ImageHandler 的构造函数。
func NewImageHandler(store artifact.Store, executor *transform.Executor, maxSize int64) *ImageHandler {
	return &ImageHandler{
		store:    store,
		executor: executor,
		maxSize:  maxSize,
	}
}

// Compress 处理图片压缩请求
// @Summary      压缩图片
// @Tags         图片工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        image    formData  file  true   "图片文件"
// @Param        quality  formData  int   false  "JPEG 质量 (10-100)，默认 80"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /image/compress [post]
func (h *ImageHandler) Compress(c *gin.Context) {
	input, ok := h.saveUpload(c, "image")
	if !ok {
		return
	}

	quality := 80
	if raw := c.PostForm("quality"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			quality = v
		}
	}

	outcome, err := h.executor.Execute(c.Request.Context(), transform.Request{
		Operation: transform.OpImageCompress,
		Inputs:    input,
		Params:    transform.ImageCompressParams{Quality: quality},
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, outcome.Data, outcome.Message)
}

// Resize 处理图片缩放请求
// @Summary      调整图片尺寸
// @Tags         图片工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        image   formData  file  true   "图片文件"
// @Param        width   formData  int   false  "目标宽度，默认 800"
// @Param        height  formData  int   false  "目标高度，默认 600"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /image/resize [post]
func (h *ImageHandler) Resize(c *gin.Context) {
	input, ok := h.saveUpload(c, "image")
	if !ok {
		return
	}

	width, height := 800, 600
	if raw := c.PostForm("width"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			width = v
		}
	}
	if raw := c.PostForm("height"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			height = v
		}
	}

	outcome, err := h.executor.Execute(c.Request.Context(), transform.Request{
		Operation: transform.OpImageResize,
		Inputs:    input,
		Params:    transform.ImageResizeParams{Width: width, Height: height},
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, outcome.Data, outcome.Message)
}

// Convert 处理图片格式转换请求
// @Summary      转换图片格式
// @Tags         图片工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        image   formData  file    true   "图片文件"
// @Param        format  formData  string  false  "目标格式，默认 png"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /image/convert [post]
func (h *ImageHandler) Convert(c *gin.Context) {
	input, ok := h.saveUpload(c, "image")
	if !ok {
		return
	}

	format := c.DefaultPostForm("format", "png")

	outcome, err := h.executor.Execute(c.Request.Context(), transform.Request{
		Operation: transform.OpImageConvert,
		Inputs:    input,
		Params:    transform.ImageConvertParams{Format: format},
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, outcome.Data, outcome.Message)
}

// saveUpload 校验并落盘单个上传图片。失败时已写出响应，调用方直接返回。
func (h *ImageHandler) saveUpload(c *gin.Context, field string) ([]model.UploadedInput, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "未上传任何图片")
		return nil, false
	}
	if err := artifact.CheckUpload(fh, imageExts, h.maxSize); err != nil {
		response.FailWithError(c, err)
		return nil, false
	}

	input, err := artifact.SaveMultipart(h.store, fh)
	if err != nil {
		log.Printf("[ImageHandler] 保存上传文件失败: %v", err)
		response.FailWithError(c, err)
		return nil, false
	}
	return []model.UploadedInput{input}, true
}
