/*
 * @Description: 数据库连接管理 (支持多种数据库)
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2026-02-04 10:26:53
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anzhiyu-c/anheyu-news/pkg/config"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// TypeMemory 表示不使用关系数据库，数据只保存在进程内存中
const TypeMemory = "memory"

// NormalizeType 统一数据库类型的写法，未配置时默认使用 sqlite
func NormalizeType(dbType string) string {
	switch dbType {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return dbType
	}
}

// DialectName 返回数据库类型对应的 Ent 方言名
func DialectName(dbType string) (string, error) {
	switch NormalizeType(dbType) {
	case "mysql":
		return dialect.MySQL, nil
	case "postgres":
		return dialect.Postgres, nil
	case "sqlite":
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("不支持的 Ent 方言: %s", dbType)
	}
}

// NewSQLDB 创建并返回一个标准的 *sql.DB 连接池，支持多种数据库。
func NewSQLDB(cfg *config.Config) (*sql.DB, error) {
	driver := cfg.GetString(config.KeyDBType)
	if driver == "" {
		log.Println("提示: 配置文件中未指定 'Database.Type'，将默认使用 'sqlite'")
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var dsn string
	var driverName string

	switch NormalizeType(driver) {
	case "mysql":
		driverName = "mysql"
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		// clientFoundRows 让 UPDATE 返回匹配行数而非实际变更行数，否则写入相同的值会被误判为记录不存在
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
			dbUser, dbPass, dbHost, dbPort, dbName)
	case "postgres":
		driverName = "postgres"
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
	case "sqlite":
		dataDir := "./data"
		if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("无法创建 data 目录: %w", err)
		}
		if dbName == "" {
			dbName = "anheyu_news.db"
		}
		finalPath := filepath.Join(dataDir, dbName)
		log.Printf("【提示】SQLite 数据库路径: %s\n", finalPath)
		return OpenSQLite(finalPath)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s (支持: mysql/mariadb, postgres, sqlite, memory)", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 sql.DB 连接失败 (驱动: %s): %w", driverName, err)
	}

	// 设置连接池参数
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法 Ping 通数据库 (驱动: %s, 主机: %s:%s): %w", driverName, dbHost, dbPort, err)
	}

	log.Printf("✅ %s 数据库连接池创建成功！\n", driverName)
	return db, nil
}

// OpenSQLite 打开指定路径的 SQLite 数据库，并启用外键约束。
// Ent 的 SQLite 迁移要求 foreign_keys 处于开启状态。
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法 Ping 通 SQLite 数据库 (%s): %w", path, err)
	}
	return db, nil
}

// NewEntDriver 根据配置创建 Ent 的 SQL 驱动，并在启动时自动创建表结构。
func NewEntDriver(db *sql.DB, cfg *config.Config) (dialect.Driver, error) {
	return OpenDriver(context.Background(), db, cfg.GetString(config.KeyDBType), cfg.GetBool(config.KeyDBDebug))
}

// OpenDriver 包装已有连接池为 Ent 驱动并执行表结构迁移
func OpenDriver(ctx context.Context, db *sql.DB, dbType string, debug bool) (dialect.Driver, error) {
	dialectName, err := DialectName(dbType)
	if err != nil {
		return nil, err
	}
	drv := entsql.OpenDB(dialectName, db)

	log.Println("⚡ 开始数据库表结构迁移...")
	if err := Migrate(ctx, drv); err != nil {
		return nil, err
	}
	log.Println("✅ 数据库表结构迁移成功")

	if debug {
		log.Println("【数据库】Ent Debug模式已开启，将打印所有执行的SQL语句。")
		return dialect.Debug(drv), nil
	}
	return drv, nil
}

// Migrate 创建或补齐 news 与 news_histories 两张表
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv,
		schema.WithDropIndex(true),
		schema.WithDropColumn(true),
		schema.WithForeignKeys(true),
	)
	if err != nil {
		return fmt.Errorf("创建迁移器失败: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}
