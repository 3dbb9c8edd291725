/*
 * @Description: 调用 ffmpeg 命令行工具实现的视频操作（提取音频/转换/压缩）。
 * @Author: 安知鱼
 * @Date: 2025-09-05 10:05:44
 * @LastEditTime: 2026-01-20 09:33:01
 * @LastEditors: 安知鱼
 */
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// VideoTransformer 通过外部 ffmpeg 进程实现视频域的三个操作。
// 每次调用都受超时约束，超时的进程会被终止，避免失控转码长期占用资源。
type VideoTransformer struct {
	ffmpegPath  string
	isAvailable bool
	timeout     time.Duration
}

// NewVideoTransformer 构造函数，自动发现 ffmpeg 命令。
func NewVideoTransformer(userConfiguredPath string, timeout time.Duration) *VideoTransformer {
	var foundPath string

	if userConfiguredPath != "" && userConfiguredPath != "ffmpeg" {
		if _, statErr := os.Stat(userConfiguredPath); statErr == nil {
			foundPath = userConfiguredPath
		} else {
			log.Printf("[VideoTransformer] 警告: 配置的 FFmpeg 路径 '%s' 无效，将尝试自动搜索。", userConfiguredPath)
		}
	}

	if foundPath == "" {
		if p, err := exec.LookPath("ffmpeg"); err == nil {
			foundPath = p
		} else {
			log.Println("[VideoTransformer] 未在系统中找到 'ffmpeg' 命令，视频操作将不可用。")
		}
	}

	if foundPath != "" {
		log.Printf("[VideoTransformer] 成功找到 FFmpeg 命令位于 '%s'。", foundPath)
	}

	return &VideoTransformer{
		ffmpegPath:  foundPath,
		isAvailable: foundPath != "",
		timeout:     timeout,
	}
}

// Register 把视频域的操作注册到注册表。
func (t *VideoTransformer) Register(reg *Registry) {
	reg.Register(Descriptor{
		Operation:      OpVideoExtractAudio,
		MinInputs:      1,
		MaxInputs:      1,
		SuccessMessage: "音频提取成功",
		Handler:        t.extractAudio,
	})
	reg.Register(Descriptor{
		Operation: OpVideoConvert,
		MinInputs: 1,
		MaxInputs: 1,
		Handler:   t.convert,
	})
	reg.Register(Descriptor{
		Operation:      OpVideoCompress,
		MinInputs:      1,
		MaxInputs:      1,
		ReportSavings:  true,
		SizeUnit:       "MB",
		SuccessMessage: "视频压缩成功",
		Handler:        t.compress,
	})
}

// extractAudio 从视频中提取 192kbps 的 MP3 音轨。
func (t *VideoTransformer) extractAudio(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	out, err := scope.ReserveOutput("audio", "mp3")
	if err != nil {
		return nil, err
	}

	args := extractAudioArgs(inputs[0].StoragePath, out)
	if err := t.run(ctx, args); err != nil {
		return nil, err
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindAudio}},
		Extra: map[string]interface{}{
			"format":  "MP3",
			"bitrate": "192kbps",
		},
	}, nil
}

// convert 把视频重新封装为目标容器，视频轨用 x264、音轨用 AAC 重编码。
func (t *VideoTransformer) convert(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	p, ok := params.(VideoConvertParams)
	if !ok {
		return nil, fmt.Errorf("%w: 参数类型与操作不匹配", constant.ErrValidation)
	}

	out, err := scope.ReserveOutput("converted", p.Format)
	if err != nil {
		return nil, err
	}

	args := convertArgs(inputs[0].StoragePath, out)
	if err := t.run(ctx, args); err != nil {
		return nil, err
	}

	upper := strings.ToUpper(p.Format)
	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindVideo}},
		Extra:     map[string]interface{}{"format": upper},
		Message:   fmt.Sprintf("视频已成功转换为 %s 格式", upper),
	}, nil
}

// compress 按质量档位对应的 CRF 重编码视频。
func (t *VideoTransformer) compress(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
	p, ok := params.(VideoCompressParams)
	if !ok {
		return nil, fmt.Errorf("%w: 参数类型与操作不匹配", constant.ErrValidation)
	}

	out, err := scope.ReserveOutput("compressed", "mp4")
	if err != nil {
		return nil, err
	}

	args := compressArgs(inputs[0].StoragePath, out, p.CRF())
	if err := t.run(ctx, args); err != nil {
		return nil, err
	}

	return &HandlerResult{
		Artifacts: []model.Artifact{{StoragePath: out, ContentKind: model.KindVideo}},
	}, nil
}

// run 在超时约束下执行一次 ffmpeg 命令。
// stderr 只进服务端日志，不会出现在对客户端的报错里。
func (t *VideoTransformer) run(ctx context.Context, args []string) error {
	if !t.isAvailable {
		return fmt.Errorf("%w: ffmpeg 不可用", constant.ErrTransformation)
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, t.ffmpegPath, args...)

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Printf("[VideoTransformer] ffmpeg 超过 %s 未完成，已终止。Stderr: %s", t.timeout, errBuf.String())
			return fmt.Errorf("%w: 转码超时", constant.ErrTransformation)
		}
		log.Printf("[VideoTransformer] ffmpeg 命令执行失败。错误: %v, Stderr: %s", err, errBuf.String())
		return fmt.Errorf("%w: ffmpeg 执行失败", constant.ErrTransformation)
	}
	return nil
}

// 下面的参数构造保持纯函数，便于单独测试。
// -y: 覆盖输出（输出路径由存储保证唯一，这里只是防御 ffmpeg 交互式询问）

func extractAudioArgs(src, out string) []string {
	return []string{
		"-y",
		"-i", src,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", "192k",
		out,
	}
}

func convertArgs(src, out string) []string {
	return []string{
		"-y",
		"-i", src,
		"-c:v", "libx264",
		"-c:a", "aac",
		out,
	}
}

func compressArgs(src, out string, crf int) []string {
	return []string{
		"-y",
		"-i", src,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-crf", strconv.Itoa(crf),
		out,
	}
}
