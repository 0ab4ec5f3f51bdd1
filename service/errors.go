package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 错误类别。调用方用 errors.Is 判断。
var (
	// ErrNotFound 引用的版本或条目不存在
	ErrNotFound = errors.New("not found")
	// ErrValidation 操作前置条件不满足
	ErrValidation = errors.New("validation failed")
	// ErrStorage 事务未能提交，整个操作视为未发生
	ErrStorage = errors.New("storage failure")
)

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify 已分类的错误原样返回，其余一律视为存储错误
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
