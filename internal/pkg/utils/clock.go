/*
 * @Description: 时钟抽象，业务代码通过它获取当前时间
 * @Author: 安知鱼
 * @Date: 2026-01-15 10:00:00
 * @LastEditTime: 2026-02-05 11:20:03
 * @LastEditors: 安知鱼
 */
package utils

import "time"

// Clock 抽象了当前时间的获取，测试中可以替换为固定时间
type Clock interface {
	Now() time.Time
}

// RealClock 返回真实的 UTC 时间
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }
