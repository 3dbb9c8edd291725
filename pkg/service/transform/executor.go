/*
 * @Description: 任务执行器：校验请求、调用已注册的转换、统计体积并装配结果。
 *               输入文件在任何退出路径上都会被删除；产物只在失败时被丢弃。
 * @Author: 安知鱼
 * @Date: 2025-09-03 15:26:40
 * @LastEditTime: 2026-01-06 17:54:23
 * @LastEditors: 安知鱼
 */
package transform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/adammamod416/ToolX/pkg/constant"
	"github.com/adammamod416/ToolX/pkg/domain/model"
	"github.com/adammamod416/ToolX/pkg/service/artifact"
)

// Request 是执行器的入参：操作标识、按序排列的输入文件与该操作的参数。
type Request struct {
	Operation string
	Inputs    []model.UploadedInput
	Params    Params
}

// Executor 编排一次转换请求的完整生命周期。
// 各请求之间没有共享可变状态，可以被任意并发调用。
type Executor struct {
	store    artifact.Store
	registry *Registry
}

func NewExecutor(store artifact.Store, registry *Registry) *Executor {
	return &Executor{store: store, registry: registry}
}

// Execute 执行一次转换。返回的错误已经归入 constant 中的错误分类，
// 不会携带底层工具的原始报错文本；细节只写入服务端日志。
func (e *Executor) Execute(ctx context.Context, req Request) (outcome *model.TransformOutcome, err error) {
	// 1. 传入的输入文件自此归本次调用所有：
	// 无论校验失败、转换失败还是 panic，结束时全部删除。
	// 没有输入的请求不会产生任何存储调用。
	defer func() {
		for _, in := range req.Inputs {
			if relErr := e.store.Release(in.StoragePath); relErr != nil {
				log.Printf("[Executor] 释放输入 %s 失败: %v", in.OriginalName, relErr)
			}
		}
	}()

	// 2. 校验：在触碰任何外部资源之前完成。
	desc, ok := e.registry.Lookup(req.Operation)
	if !ok {
		return nil, fmt.Errorf("%w: 未知的转换操作 '%s'", constant.ErrValidation, req.Operation)
	}
	if n := len(req.Inputs); n < desc.MinInputs || n > desc.MaxInputs {
		return nil, e.arityError(desc, len(req.Inputs))
	}
	params := req.Params
	if params == nil {
		params = NoParams{}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	scope := artifact.NewScope(e.store)
	defer scope.Cleanup()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Executor] 操作 %s 发生 panic: %v\n%s", req.Operation, r, debug.Stack())
			scope.DiscardOutputs()
			outcome = nil
			err = fmt.Errorf("%w: 内部错误", constant.ErrTransformation)
		}
	}()

	// 3. 调用处理函数。
	res, err := desc.Handler(ctx, req.Inputs, params, scope)
	if err != nil {
		scope.DiscardOutputs()
		return nil, e.classify(req.Operation, err)
	}
	if len(res.Artifacts) == 0 {
		scope.DiscardOutputs()
		log.Printf("[Executor] 操作 %s 未产出任何产物", req.Operation)
		return nil, constant.ErrTransformation
	}

	// 4. 装配成功结果。
	data, err := e.assemble(desc, req.Inputs, res)
	if err != nil {
		scope.DiscardOutputs()
		return nil, e.classify(req.Operation, err)
	}

	message := res.Message
	if message == "" {
		message = desc.SuccessMessage
	}
	return &model.TransformOutcome{Data: data, Message: message}, nil
}

// assemble 计算体积统计与下载地址，合并处理函数给出的附加数据。
func (e *Executor) assemble(desc Descriptor, inputs []model.UploadedInput, res *HandlerResult) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	var outputTotal int64
	for i := range res.Artifacts {
		art := &res.Artifacts[i]
		info, err := os.Stat(art.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("%w: 读取产物信息失败: %v", constant.ErrTransformation, err)
		}
		art.SizeBytes = info.Size()
		art.PublicRef = e.store.PublicRef(art.StoragePath)
		outputTotal += art.SizeBytes
	}

	if len(res.Artifacts) == 1 {
		data["downloadUrl"] = e.store.PublicURL(res.Artifacts[0].StoragePath)
	} else {
		// 多产物操作（PDF 拆分）按页序报告每个文件的下载地址
		files := make([]map[string]interface{}, len(res.Artifacts))
		for i, art := range res.Artifacts {
			files[i] = map[string]interface{}{
				"page": i + 1,
				"url":  e.store.PublicURL(art.StoragePath),
			}
		}
		data["files"] = files
	}

	if desc.ReportSavings {
		var inputTotal int64
		for _, in := range inputs {
			inputTotal += in.SizeBytes
		}
		data["originalSize"] = formatSize(inputTotal, desc.SizeUnit)
		data["compressedSize"] = formatSize(outputTotal, desc.SizeUnit)
		data["savings"] = formatSavings(inputTotal, outputTotal)
	}

	for k, v := range res.Extra {
		data[k] = v
	}
	return data, nil
}

// classify 把处理函数的错误归入对外的错误分类。
// 已经分类过的错误原样传递，其余一律按转换失败处理。
func (e *Executor) classify(operation string, err error) error {
	if errors.Is(err, constant.ErrValidation) ||
		errors.Is(err, constant.ErrResource) ||
		errors.Is(err, constant.ErrTransformation) {
		return err
	}
	log.Printf("[Executor] 操作 %s 失败: %v", operation, err)
	return constant.ErrTransformation
}

func (e *Executor) arityError(desc Descriptor, got int) error {
	if desc.MinInputs == desc.MaxInputs {
		return fmt.Errorf("%w: 操作 %s 需要 %d 个输入文件，收到 %d 个",
			constant.ErrValidation, desc.Operation, desc.MinInputs, got)
	}
	return fmt.Errorf("%w: 操作 %s 需要 %d 到 %d 个输入文件，收到 %d 个",
		constant.ErrValidation, desc.Operation, desc.MinInputs, desc.MaxInputs, got)
}

// formatSize 按原始工具的口径格式化体积：图片/PDF 用 KB，视频用 MB。
func formatSize(bytes int64, unit string) string {
	switch unit {
	case "MB":
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	}
}

// formatSavings 计算 (1 - out/in) * 100 并保留两位小数。
func formatSavings(inputBytes, outputBytes int64) string {
	if inputBytes <= 0 {
		return "0.00%"
	}
	savings := (1 - float64(outputBytes)/float64(inputBytes)) * 100
	return fmt.Sprintf("%.2f%%", savings)
}
