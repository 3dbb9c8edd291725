/*
 * @Description: 程序入口
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-12-01 12:19:06
 * @LastEditors: 安知鱼
 */
package main

import (
	"log"

	"github.com/adammamod416/ToolX/cmd/server"
)

// @title           ToolX API
// @version         1.0
// @description     ToolX 多格式文件处理服务接口文档

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8091
// @BasePath  /api
func main() {
	// 调用位于 cmd/server 包中的 NewApp 函数来构建整个应用
	app, err := server.NewApp()
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	// 确保后台任务在程序退出时被停止
	defer app.Stop()

	app.PrintBanner()

	// 启动应用
	if err := app.Run(); err != nil {
		log.Fatalf("应用运行失败: %v", err)
	}
}
