package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateDB(t *testing.T) {
	if TranslateDB(nil) != nil {
		t.Error("nil 应原样返回")
	}

	check := fmt.Errorf("插入失败: %w", &pgconn.PgError{Code: "23514", ConstraintName: "occurrences_time_range_check"})
	if err := TranslateDB(check); !errors.Is(err, ErrCheckViolation) {
		t.Errorf("23514 应转换为 ErrCheckViolation，实际 %v", err)
	}

	var pgErr *pgconn.PgError
	if err := TranslateDB(check); !errors.As(err, &pgErr) {
		t.Error("转换后仍应保留原始驱动错误")
	}

	other := &pgconn.PgError{Code: "23505"}
	if err := TranslateDB(other); errors.Is(err, ErrCheckViolation) {
		t.Error("唯一约束冲突不应视为 CHECK 违反")
	}

	plain := errors.New("连接断开")
	if TranslateDB(plain) != plain {
		t.Error("非驱动错误应原样返回")
	}
}
