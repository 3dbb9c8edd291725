package transform

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
)

// makeImageInput 生成一张纯色测试图并包装为 UploadedInput。
func makeImageInput(t *testing.T, store *spyStore, name string, width, height int) model.UploadedInput {
	t.Helper()
	path, err := store.ReserveInputPath(name)
	if err != nil {
		t.Fatalf("预留输入路径失败: %v", err)
	}
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("生成测试图失败: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("读取测试图信息失败: %v", err)
	}
	return model.UploadedInput{
		OriginalName: name,
		SizeBytes:    info.Size(),
		StoragePath:  path,
	}
}

func newImageExecutor(t *testing.T) (*Executor, *spyStore) {
	t.Helper()
	store := newSpyStore(t)
	registry := NewRegistry()
	NewImageTransformer().Register(registry)
	return NewExecutor(store, registry), store
}

// artifactPath 从下载地址还原产物在暂存目录内的路径。
func artifactPath(store *spyStore, url string) string {
	return filepath.Join(store.Dir(), strings.TrimPrefix(url, "/uploads/"))
}

func TestImageCompress(t *testing.T) {
	exec, store := newImageExecutor(t)
	input := makeImageInput(t, store, "photo.jpg", 400, 300)

	outcome, err := exec.Execute(context.Background(), Request{
		Operation: OpImageCompress,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageCompressParams{Quality: 10},
	})
	if err != nil {
		t.Fatalf("压缩失败: %v", err)
	}

	if outcome.Message != "图片压缩成功" {
		t.Errorf("Message = %q", outcome.Message)
	}
	url, _ := outcome.Data["downloadUrl"].(string)
	if url == "" {
		t.Fatalf("缺少 downloadUrl: %+v", outcome.Data)
	}
	out := artifactPath(store, url)
	if filepath.Ext(out) != ".jpg" {
		t.Errorf("压缩产物应当是 JPEG: %s", out)
	}
	if _, err := imaging.Open(out); err != nil {
		t.Errorf("压缩产物无法解码: %v", err)
	}
	for _, key := range []string{"originalSize", "compressedSize", "savings"} {
		if _, ok := outcome.Data[key]; !ok {
			t.Errorf("缺少体积统计字段 %s", key)
		}
	}
	if _, err := os.Stat(input.StoragePath); !os.IsNotExist(err) {
		t.Error("输入文件应当已被删除")
	}
}

func TestImageResize(t *testing.T) {
	exec, store := newImageExecutor(t)
	input := makeImageInput(t, store, "photo.png", 400, 300)

	outcome, err := exec.Execute(context.Background(), Request{
		Operation: OpImageResize,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageResizeParams{Width: 100, Height: 100},
	})
	if err != nil {
		t.Fatalf("缩放失败: %v", err)
	}

	if outcome.Data["dimensions"] != "100x100" {
		t.Errorf("dimensions = %v", outcome.Data["dimensions"])
	}

	url, _ := outcome.Data["downloadUrl"].(string)
	resized, err := imaging.Open(artifactPath(store, url))
	if err != nil {
		t.Fatalf("打开缩放产物失败: %v", err)
	}
	bounds := resized.Bounds()
	if bounds.Dx() > 100 || bounds.Dy() > 100 {
		t.Errorf("缩放产物超出边界框: %dx%d", bounds.Dx(), bounds.Dy())
	}
	// 等比缩放：400x300 放进 100x100 应得 100x75
	if bounds.Dx() != 100 || bounds.Dy() != 75 {
		t.Errorf("期望 100x75, 实际 %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestImageConvert(t *testing.T) {
	exec, store := newImageExecutor(t)

	tests := []struct {
		name    string
		format  string
		wantExt string
	}{
		{"转PNG", "png", ".png"},
		{"转BMP", "bmp", ".bmp"},
		{"转TIFF", "tiff", ".tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := makeImageInput(t, store, "photo.jpg", 64, 64)
			outcome, err := exec.Execute(context.Background(), Request{
				Operation: OpImageConvert,
				Inputs:    []model.UploadedInput{input},
				Params:    ImageConvertParams{Format: tt.format},
			})
			if err != nil {
				t.Fatalf("转换失败: %v", err)
			}

			upper := strings.ToUpper(tt.format)
			if outcome.Data["format"] != upper {
				t.Errorf("format = %v, 期望 %s", outcome.Data["format"], upper)
			}
			if want := "图片已成功转换为 " + upper + " 格式"; outcome.Message != want {
				t.Errorf("Message = %q, 期望 %q", outcome.Message, want)
			}

			url, _ := outcome.Data["downloadUrl"].(string)
			out := artifactPath(store, url)
			if filepath.Ext(out) != tt.wantExt {
				t.Errorf("产物扩展名 = %s, 期望 %s", filepath.Ext(out), tt.wantExt)
			}
			if _, err := imaging.Open(out); err != nil {
				t.Errorf("转换产物无法解码: %v", err)
			}
		})
	}
}

func TestImageCompressWrongParamsType(t *testing.T) {
	exec, store := newImageExecutor(t)
	input := makeImageInput(t, store, "photo.jpg", 64, 64)

	// ImageResizeParams 自身能通过校验，但与 image.compress 不匹配，
	// 处理函数应当返回校验错误而不是 panic
	_, err := exec.Execute(context.Background(), Request{
		Operation: OpImageCompress,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageResizeParams{Width: 100, Height: 100},
	})
	if !errors.Is(err, constant.ErrValidation) {
		t.Fatalf("期望 ErrValidation, 实际: %v", err)
	}
	if _, statErr := os.Stat(input.StoragePath); !os.IsNotExist(statErr) {
		t.Error("失败后输入文件同样应当被删除")
	}
}

func TestImageCompressRejectsCorruptInput(t *testing.T) {
	exec, store := newImageExecutor(t)

	path, err := store.ReserveInputPath("broken.jpg")
	if err != nil {
		t.Fatalf("预留输入路径失败: %v", err)
	}
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
	input := model.UploadedInput{OriginalName: "broken.jpg", SizeBytes: 12, StoragePath: path}

	_, err = exec.Execute(context.Background(), Request{
		Operation: OpImageCompress,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageCompressParams{Quality: 80},
	})
	if err == nil {
		t.Fatal("损坏的输入应当报错")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("失败后输入文件同样应当被删除")
	}
}
