/*
 * @Description: 负责处理视频工具相关的HTTP请求。
 * @Author: 安知鱼
 * @Date: 2025-09-08 16:12:40
 * @LastEditTime: 2026-01-15 11:55:21
 * @LastEditors: 安知鱼
 */
package video_handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/response"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
	"github.com/adammamod416/ToolX/pkg/service/transform"
)

// videoExts 是视频端点接受的上传扩展名。
var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".webm": true, ".mkv": true,
}

// VideoHandler 负责处理视频域的三个转换端点。
type VideoHandler struct {
	store    artifact.Store
	executor *transform.Executor
	maxSize  int64
}

// NewVideoHandler 是 VideoHandler 的构造函数。
func NewVideoHandler(store artifact.Store, executor *transform.Executor, maxSize int64) *VideoHandler {
	return &VideoHandler{
		store:    store,
		executor: executor,
		maxSize:  maxSize,
	}
}

// ExtractAudio 处理提取音频的请求
// @Summary      从视频提取音频
// @Tags         视频工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        video  formData  file  true  "视频文件"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /video/extract-audio [post]
func (h *VideoHandler) ExtractAudio(c *gin.Context) {
	inputs, ok := h.saveUpload(c)
	if !ok {
		return
	}
	h.execute(c, transform.OpVideoExtractAudio, inputs, nil)
}

// Convert 处理视频格式转换的请求
// @Summary      转换视频格式
// @Tags         视频工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        video   formData  file    true   "视频文件"
// @Param        format  formData  string  false  "目标格式，默认 mp4"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /video/convert [post]
func (h *VideoHandler) Convert(c *gin.Context) {
	inputs, ok := h.saveUpload(c)
	if !ok {
		return
	}
	format := c.DefaultPostForm("format", "mp4")
	h.execute(c, transform.OpVideoConvert, inputs, transform.VideoConvertParams{Format: format})
}

// Compress 处理视频压缩的请求
// @Summary      压缩视频
// @Tags         视频工具
// @Accept       multipart/form-data
// @Produce      json
// @Param        video    formData  file    true   "视频文件"
// @Param        quality  formData  string  false  "质量档位 low/medium/high，默认 medium"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /video/compress [post]
func (h *VideoHandler) Compress(c *gin.Context) {
	inputs, ok := h.saveUpload(c)
	if !ok {
		return
	}
	quality := c.DefaultPostForm("quality", "medium")
	h.execute(c, transform.OpVideoCompress, inputs, transform.VideoCompressParams{Quality: quality})
}

func (h *VideoHandler) execute(c *gin.Context, operation string, inputs []model.UploadedInput, params transform.Params) {
	outcome, err := h.executor.Execute(c.Request.Context(), transform.Request{
		Operation: operation,
		Inputs:    inputs,
		Params:    params,
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, outcome.Data, outcome.Message)
}

// saveUpload 校验并落盘单个上传视频。失败时已写出响应，调用方直接返回。
func (h *VideoHandler) saveUpload(c *gin.Context) ([]model.UploadedInput, bool) {
	fh, err := c.FormFile("video")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "未上传任何视频文件")
		return nil, false
	}
	if err := artifact.CheckUpload(fh, videoExts, h.maxSize); err != nil {
		response.FailWithError(c, err)
		return nil, false
	}

	input, err := artifact.SaveMultipart(h.store, fh)
	if err != nil {
		log.Printf("[VideoHandler] 保存上传文件失败: %v", err)
		response.FailWithError(c, err)
		return nil, false
	}
	return []model.UploadedInput{input}, true
}
