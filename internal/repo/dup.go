package repo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// isDupKey 兼容 postgres / mysql / sqlite 三种驱动的唯一键冲突
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || // postgres
		strings.Contains(s, "duplicate entry") || // mysql
		strings.Contains(s, "unique constraint failed") // sqlite
}
