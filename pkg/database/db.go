package database

import (
	"Forge/config"
	"Forge/models"
	"Forge/pkg/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewDB 初始化数据库连接
func NewDB(conf *config.Config) *gorm.DB {
	dsn := conf.MySQL.Dsn()
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.L.Fatal("failed to connect database", zap.Error(err))
	}
	log.L.Info("connect database success")
	return db
}

// Migrate 建表，唯一索引保证每个 (subject, actor, kind) 至多一条边
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
