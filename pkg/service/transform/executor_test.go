package transform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// spyStore 实现 artifact.Store，记录每一次调用，
// 用于断言校验失败时存储从未被触达、以及输入与产物的释放时机。
type spyStore struct {
	dir          string
	reserveCalls int
	released     []string
	seq          int
}

func newSpyStore(t *testing.T) *spyStore {
	t.Helper()
	return &spyStore{dir: t.TempDir()}
}

func (s *spyStore) ReserveInputPath(originalName string) (string, error) {
	s.reserveCalls++
	s.seq++
	return filepath.Join(s.dir, fmt.Sprintf("input-%d%s", s.seq, filepath.Ext(originalName))), nil
}

func (s *spyStore) ReserveOutputPath(prefix, ext string) (string, error) {
	s.reserveCalls++
	s.seq++
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.%s", prefix, s.seq, ext)), nil
}

func (s *spyStore) Release(path string) error {
	s.released = append(s.released, path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *spyStore) PublicRef(path string) string {
	return filepath.Base(path)
}

func (s *spyStore) PublicURL(path string) string {
	return "/uploads/" + s.PublicRef(path)
}

func (s *spyStore) Resolve(token string) (string, error) {
	return filepath.Join(s.dir, token), nil
}

func (s *spyStore) Dir() string {
	return s.dir
}

func (s *spyStore) hasReleased(path string) bool {
	for _, p := range s.released {
		if p == path {
			return true
		}
	}
	return false
}

// makeInput 在暂存目录落一个真实文件并返回对应的 UploadedInput。
func makeInput(t *testing.T, store *spyStore, name string, size int) model.UploadedInput {
	t.Helper()
	path, err := store.ReserveInputPath(name)
	if err != nil {
		t.Fatalf("预留输入路径失败: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("写入输入文件失败: %v", err)
	}
	return model.UploadedInput{
		OriginalName: name,
		SizeBytes:    int64(size),
		StoragePath:  path,
	}
}

// writingHandler 返回一个在作用域内申请产物路径、写入 size 字节内容的处理函数。
func writingHandler(outputs int, size int, extra map[string]interface{}) HandlerFunc {
	return func(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
		res := &HandlerResult{Extra: extra}
		for i := 0; i < outputs; i++ {
			path, err := scope.ReserveOutput("out", "bin")
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
				return nil, err
			}
			res.Artifacts = append(res.Artifacts, model.Artifact{StoragePath: path})
		}
		return res, nil
	}
}

func TestExecuteUnknownOperation(t *testing.T) {
	store := newSpyStore(t)
	exec := NewExecutor(store, NewRegistry())

	_, err := exec.Execute(context.Background(), Request{Operation: "image.rotate"})
	if !errors.Is(err, constant.ErrValidation) {
		t.Fatalf("期望 ErrValidation, 实际: %v", err)
	}
	if store.reserveCalls != 0 || len(store.released) != 0 {
		t.Errorf("未注册的操作不应触达存储: reserve=%d release=%d",
			store.reserveCalls, len(store.released))
	}
}

func TestExecuteArityCheck(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	registry.Register(Descriptor{
		Operation:      OpPdfMerge,
		MinInputs:      2,
		MaxInputs:      10,
		SuccessMessage: "合并完成",
		Handler:        writingHandler(1, 10, nil),
	})
	exec := NewExecutor(store, registry)

	input := makeInput(t, store, "a.pdf", 100)
	baseline := store.reserveCalls

	_, err := exec.Execute(context.Background(), Request{
		Operation: OpPdfMerge,
		Inputs:    []model.UploadedInput{input},
	})
	if !errors.Is(err, constant.ErrValidation) {
		t.Fatalf("期望 ErrValidation, 实际: %v", err)
	}
	if store.reserveCalls != baseline {
		t.Error("数量校验失败后不应再预留任何路径")
	}
	if !store.hasReleased(input.StoragePath) {
		t.Error("数量校验失败后输入文件同样应当被释放")
	}
	if _, statErr := os.Stat(input.StoragePath); !os.IsNotExist(statErr) {
		t.Error("数量校验失败后输入文件应当已被删除")
	}
}

func TestExecuteParamValidation(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	registry.Register(Descriptor{
		Operation: OpImageCompress,
		MinInputs: 1,
		MaxInputs: 1,
		Handler:   writingHandler(1, 10, nil),
	})
	exec := NewExecutor(store, registry)

	tests := []struct {
		name   string
		params Params
	}{
		{"质量低于下限", ImageCompressParams{Quality: 9}},
		{"质量高于上限", ImageCompressParams{Quality: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := makeInput(t, store, "a.jpg", 100)
			_, err := exec.Execute(context.Background(), Request{
				Operation: OpImageCompress,
				Inputs:    []model.UploadedInput{input},
				Params:    tt.params,
			})
			if !errors.Is(err, constant.ErrValidation) {
				t.Fatalf("期望 ErrValidation, 实际: %v", err)
			}
			if _, statErr := os.Stat(input.StoragePath); !os.IsNotExist(statErr) {
				t.Error("参数校验失败后输入文件应当已被删除")
			}
		})
	}
}

func TestExecuteSuccessSingleArtifact(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	registry.Register(Descriptor{
		Operation:      OpPdfCompress,
		MinInputs:      1,
		MaxInputs:      1,
		ReportSavings:  true,
		SizeUnit:       "KB",
		SuccessMessage: "PDF压缩成功",
		Handler:        writingHandler(1, 1024, nil),
	})
	exec := NewExecutor(store, registry)

	input := makeInput(t, store, "big.pdf", 2048)
	outcome, err := exec.Execute(context.Background(), Request{
		Operation: OpPdfCompress,
		Inputs:    []model.UploadedInput{input},
	})
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	if outcome.Message != "PDF压缩成功" {
		t.Errorf("Message = %q", outcome.Message)
	}
	url, ok := outcome.Data["downloadUrl"].(string)
	if !ok || url == "" {
		t.Fatalf("缺少 downloadUrl: %+v", outcome.Data)
	}
	if outcome.Data["originalSize"] != "2.00 KB" {
		t.Errorf("originalSize = %v", outcome.Data["originalSize"])
	}
	if outcome.Data["compressedSize"] != "1.00 KB" {
		t.Errorf("compressedSize = %v", outcome.Data["compressedSize"])
	}
	if outcome.Data["savings"] != "50.00%" {
		t.Errorf("savings = %v", outcome.Data["savings"])
	}
	if !store.hasReleased(input.StoragePath) {
		t.Error("成功后输入文件应当被释放")
	}
}

func TestExecuteSuccessMultipleArtifacts(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	registry.Register(Descriptor{
		Operation:      OpPdfSplit,
		MinInputs:      1,
		MaxInputs:      1,
		SuccessMessage: "PDF拆分成功",
		Handler:        writingHandler(3, 64, map[string]interface{}{"pageCount": 3}),
	})
	exec := NewExecutor(store, registry)

	input := makeInput(t, store, "doc.pdf", 400)
	outcome, err := exec.Execute(context.Background(), Request{
		Operation: OpPdfSplit,
		Inputs:    []model.UploadedInput{input},
	})
	if err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	files, ok := outcome.Data["files"].([]map[string]interface{})
	if !ok {
		t.Fatalf("缺少 files 列表: %+v", outcome.Data)
	}
	if len(files) != 3 {
		t.Fatalf("期望 3 个文件, 实际 %d", len(files))
	}
	for i, f := range files {
		if f["page"] != i+1 {
			t.Errorf("第 %d 项 page = %v", i, f["page"])
		}
		if url, _ := f["url"].(string); url == "" {
			t.Errorf("第 %d 项缺少 url", i)
		}
	}
	if outcome.Data["pageCount"] != 3 {
		t.Errorf("pageCount = %v", outcome.Data["pageCount"])
	}
	if _, exists := outcome.Data["downloadUrl"]; exists {
		t.Error("多产物结果不应包含 downloadUrl")
	}
}

func TestExecuteHandlerFailureDiscardsOutputs(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()

	var reservedOutput string
	registry.Register(Descriptor{
		Operation: OpImageConvert,
		MinInputs: 1,
		MaxInputs: 1,
		Handler: func(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
			path, err := scope.ReserveOutput("converted", "png")
			if err != nil {
				return nil, err
			}
			reservedOutput = path
			if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
				return nil, err
			}
			return nil, errors.New("encoder exploded")
		},
	})
	exec := NewExecutor(store, registry)

	input := makeInput(t, store, "a.jpg", 100)
	_, err := exec.Execute(context.Background(), Request{
		Operation: OpImageConvert,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageConvertParams{Format: "png"},
	})
	if !errors.Is(err, constant.ErrTransformation) {
		t.Fatalf("未分类错误应映射为 ErrTransformation, 实际: %v", err)
	}
	if err.Error() != constant.ErrTransformation.Error() {
		t.Errorf("对外错误不应携带底层报错文本: %v", err)
	}
	if !store.hasReleased(reservedOutput) {
		t.Error("失败时半成品产物应当被丢弃")
	}
	if _, statErr := os.Stat(reservedOutput); !os.IsNotExist(statErr) {
		t.Error("半成品产物文件应当已被删除")
	}
	if !store.hasReleased(input.StoragePath) {
		t.Error("失败后输入文件同样应当被释放")
	}
}

func TestExecuteCategorizedErrorPassthrough(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	wrapped := fmt.Errorf("%w: 第 3 页损坏", constant.ErrValidation)
	registry.Register(Descriptor{
		Operation: OpPdfMerge,
		MinInputs: 2,
		MaxInputs: 10,
		Handler: func(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
			return nil, wrapped
		},
	})
	exec := NewExecutor(store, registry)

	inputs := []model.UploadedInput{
		makeInput(t, store, "a.pdf", 100),
		makeInput(t, store, "b.pdf", 100),
	}
	_, err := exec.Execute(context.Background(), Request{
		Operation: OpPdfMerge,
		Inputs:    inputs,
	})
	if !errors.Is(err, wrapped) {
		t.Fatalf("已分类错误应原样透传, 实际: %v", err)
	}
}

func TestExecuteHandlerPanicRecovered(t *testing.T) {
	store := newSpyStore(t)
	registry := NewRegistry()
	registry.Register(Descriptor{
		Operation: OpImageResize,
		MinInputs: 1,
		MaxInputs: 1,
		Handler: func(ctx context.Context, inputs []model.UploadedInput, params Params, scope *artifact.Scope) (*HandlerResult, error) {
			panic("decoder bug")
		},
	})
	exec := NewExecutor(store, registry)

	input := makeInput(t, store, "a.png", 100)
	outcome, err := exec.Execute(context.Background(), Request{
		Operation: OpImageResize,
		Inputs:    []model.UploadedInput{input},
		Params:    ImageResizeParams{Width: 100, Height: 100},
	})
	if outcome != nil {
		t.Error("panic 恢复后不应返回结果")
	}
	if !errors.Is(err, constant.ErrTransformation) {
		t.Fatalf("panic 应映射为 ErrTransformation, 实际: %v", err)
	}
	if !store.hasReleased(input.StoragePath) {
		t.Error("panic 后输入文件同样应当被释放")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		unit  string
		want  string
	}{
		{"KB单位", 1536, "KB", "1.50 KB"},
		{"MB单位", 3 * 1024 * 1024, "MB", "3.00 MB"},
		{"未指定单位按KB", 512, "", "0.50 KB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSize(tt.bytes, tt.unit); got != tt.want {
				t.Errorf("formatSize(%d, %q) = %q, 期望 %q", tt.bytes, tt.unit, got, tt.want)
			}
		})
	}
}

func TestFormatSavings(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		out  int64
		want string
	}{
		{"节省一半", 2000, 1000, "50.00%"},
		{"体积增大为负数", 1000, 1500, "-50.00%"},
		{"输入为零", 0, 100, "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSavings(tt.in, tt.out); got != tt.want {
				t.Errorf("formatSavings(%d, %d) = %q, 期望 %q", tt.in, tt.out, got, tt.want)
			}
		})
	}
}
