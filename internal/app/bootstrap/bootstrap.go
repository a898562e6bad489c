/*
 * @Description: 启动时的数据初始化引导程序
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:40:05
 * @LastEditTime: 2026-02-06 15:12:08
 * @LastEditors: 安知鱼
 */
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
	news_service "github.com/anzhiyu-c/anheyu-news/pkg/service/news"
)

// Bootstrapper 在表结构就绪之后检查并初始化业务数据
type Bootstrapper struct {
	newsRepo repository.NewsRepository
	newsSvc  news_service.Service
	seed     bool
}

// NewBootstrapper 创建引导程序，seed 为 true 时会在空库中写入示例新闻
func NewBootstrapper(newsRepo repository.NewsRepository, newsSvc news_service.Service, seed bool) *Bootstrapper {
	return &Bootstrapper{
		newsRepo: newsRepo,
		newsSvc:  newsSvc,
		seed:     seed,
	}
}

// InitializeData 执行数据初始化，返回写入的示例新闻条数
func (b *Bootstrapper) InitializeData(ctx context.Context) (int, error) {
	log.Println("--- 开始执行数据初始化引导程序 ---")

	seeded := 0
	if b.seed {
		n, err := b.newsSvc.Seed(ctx)
		if err != nil {
			return n, fmt.Errorf("写入示例新闻失败: %w", err)
		}
		seeded = n
	}

	b.checkNewsTable(ctx)

	log.Println("--- 数据初始化引导程序执行完成 ---")
	return seeded, nil
}

// checkNewsTable 打印当前新闻数量，空库时给出提示
func (b *Bootstrapper) checkNewsTable(ctx context.Context) {
	count, err := b.newsRepo.Count(ctx)
	if err != nil {
		log.Printf("⚠️ 失败: 查询新闻数量失败: %v", err)
		return
	}
	if count == 0 {
		log.Println("ℹ️  当前没有任何新闻，可通过 POST /news 创建，或设置 System.Seed=true 写入示例数据")
		return
	}
	log.Printf("📰 当前共有 %d 条新闻", count)
}
