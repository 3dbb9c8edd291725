package transform

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/adammamod416/ToolX/pkg/constant"
)

func TestVideoCompressParamsCRF(t *testing.T) {
	tests := []struct {
		name    string
		quality string
		want    int
	}{
		{"低质量档", "low", 28},
		{"中质量档", "medium", 23},
		{"高质量档", "high", 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := VideoCompressParams{Quality: tt.quality}
			if err := p.Validate(); err != nil {
				t.Fatalf("校验失败: %v", err)
			}
			if got := p.CRF(); got != tt.want {
				t.Errorf("CRF() = %d, 期望 %d", got, tt.want)
			}
		})
	}

	t.Run("非法档位", func(t *testing.T) {
		p := VideoCompressParams{Quality: "ultra"}
		if err := p.Validate(); !errors.Is(err, constant.ErrValidation) {
			t.Errorf("期望 ErrValidation, 实际: %v", err)
		}
	})
}

func TestFfmpegArgs(t *testing.T) {
	const src = "/tmp/in.mp4"
	const out = "/tmp/out.bin"

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{
			name: "提取音频",
			got:  extractAudioArgs(src, out),
			want: []string{"-y", "-i", src, "-vn", "-acodec", "libmp3lame", "-b:a", "192k", out},
		},
		{
			name: "格式转换",
			got:  convertArgs(src, out),
			want: []string{"-y", "-i", src, "-c:v", "libx264", "-c:a", "aac", out},
		},
		{
			name: "按CRF压缩",
			got:  compressArgs(src, out, 23),
			want: []string{"-y", "-i", src, "-c:v", "libx264", "-c:a", "aac", "-crf", "23", out},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("参数列表 = %v, 期望 %v", tt.got, tt.want)
			}
		})
	}
}

func TestVideoRunUnavailable(t *testing.T) {
	vt := &VideoTransformer{isAvailable: false, timeout: time.Second}
	err := vt.run(context.Background(), []string{"-version"})
	if !errors.Is(err, constant.ErrTransformation) {
		t.Errorf("ffmpeg 不可用时应返回 ErrTransformation, 实际: %v", err)
	}
}

func TestVideoConvertParams(t *testing.T) {
	for _, format := range []string{"mp4", "webm", "avi", "mov", "mkv"} {
		if err := (VideoConvertParams{Format: format}).Validate(); err != nil {
			t.Errorf("格式 %s 应当合法: %v", format, err)
		}
	}
	if err := (VideoConvertParams{Format: "flv"}).Validate(); !errors.Is(err, constant.ErrValidation) {
		t.Errorf("不支持的容器应返回 ErrValidation, 实际: %v", err)
	}
}
