/*
 * @Description: 程序入口
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-02-06 16:31:02
 * @LastEditors: 安知鱼
 */
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-news/cmd/server"
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-news/pkg/config"
)

// @title           Anheyu News API
// @version         1.0
// @description     新闻接口文档，支持字段级更新历史与回滚

// @contact.name   安知鱼
// @contact.url    https://github.com/anzhiyu-c/anheyu-news

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /
func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", config.DefaultFilePath, "配置文件路径，不存在时会自动创建")
	flag.BoolVar(&showVersion, "version", false, "打印版本信息后退出")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetVersionString())
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	app, cleanup, err := server.NewAppWithConfig(cfg)
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}
	defer cleanup()
	defer app.Stop()

	app.PrintBanner()

	if err := app.Run(); err != nil {
		log.Fatalf("应用运行失败: %v", err)
	}
}
