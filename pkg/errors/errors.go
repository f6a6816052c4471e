package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrStaleRecord 更新或删除未命中任何记录：目标已被其他编辑者删除
	ErrStaleRecord = errors.New("记录不存在或已被删除，请刷新后重试")

	// ErrCheckViolation 违反数据库 CHECK 约束（如 end_at > start_at）
	ErrCheckViolation = errors.New("数据不满足约束条件")
)

// PostgreSQL 错误码
const (
	pgCheckViolation = "23514"
	pgForeignKey     = "23503"
)

// TranslateDB 将驱动层错误转换为业务可识别的哨兵错误，其余原样返回
func TranslateDB(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgCheckViolation, pgForeignKey:
		return errors.Join(ErrCheckViolation, err)
	default:
		return err
	}
}
