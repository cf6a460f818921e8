package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在，与 gorm 保持一致，方便上层统一判断
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("duplicate key")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation 判断是否为唯一索引冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
