/*
 * @Description: 基于 Ent SQL 构建器的通用执行辅助
 * @Author: 安知鱼
 * @Date: 2026-02-04 11:08:45
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-news/internal/infra/persistence/database"
)

// sqliteTimeLayout 定宽的时间格式，使 SQLite 中按文本排序与按时间排序一致
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

// conn 封装一个可执行查询的对象（驱动或事务）及其方言
type conn struct {
	drv     dialect.ExecQuerier
	dialect string
}

func (c conn) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

// timeArg 将时间统一为 UTC 微秒精度，SQLite 下写入定宽文本
func (c conn) timeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if c.dialect == dialect.SQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

// query 执行查询，并对每一行调用 scan
func (c conn) query(ctx context.Context, q entsql.Querier, scan func(rows *entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := c.drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// exec 执行写操作并返回受影响的行数
func (c conn) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert 执行插入并返回自增主键。
// Postgres 与 SQLite 使用 RETURNING，MySQL 使用 LastInsertId。
func (c conn) insert(ctx context.Context, ib *entsql.InsertBuilder) (uint, error) {
	if c.dialect == dialect.MySQL {
		query, args := ib.Query()
		var res sql.Result
		if err := c.drv.Exec(ctx, query, args, &res); err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return uint(id), nil
	}

	var id uint
	found := false
	err := c.query(ctx, ib.Returning(database.ColumnID), func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("插入后未返回主键")
	}
	return id, nil
}

// count 执行 COUNT 查询
func (c conn) count(ctx context.Context, s *entsql.Selector) (int, error) {
	var n int
	err := c.query(ctx, s, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// timeValue 兼容不同驱动返回的时间类型：time.Time、文本或字节
type timeValue struct {
	t time.Time
}

var timeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Scan implements sql.Scanner.
func (v *timeValue) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		v.t = time.Time{}
		return nil
	case time.Time:
		v.t = s
		return nil
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	default:
		return fmt.Errorf("无法将 %T 解析为时间", src)
	}
}

func (v *timeValue) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			v.t = t
			return nil
		}
	}
	return fmt.Errorf("无法解析时间 %q", s)
}
