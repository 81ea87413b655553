package scan

import (
	"errors"
	"fmt"
)

// ErrNotFound 设备暂无扫描记录
var ErrNotFound = errors.New("scan not found")

// InputError 客户端输入不合法，对应 400
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func invalidInput(msg string, err error) error {
	return &InputError{Msg: msg, Err: err}
}

// IsInputError 判断是否为客户端输入错误
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Step 上传流程中的下游步骤
type Step string

const (
	StepUpsertDevice Step = "upsert device"
	StepUploadImage  Step = "upload image"
	StepInsertScan   Step = "insert scan"
	StepQuery        Step = "query scans"
)

// DownstreamError 数据库或对象存储失败，对应 500
// Error() 保留底层错误原文
type DownstreamError struct {
	Step Step
	Err  error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}

// Message 面向调用方的简短错误描述
func (e *DownstreamError) Message() string {
	switch e.Step {
	case StepUpsertDevice:
		return "Failed to register device"
	case StepUploadImage:
		return "Failed to upload image"
	case StepInsertScan:
		return "Failed to save scan"
	default:
		return "Failed to load scans"
	}
}

func downstream(step Step, err error) error {
	return &DownstreamError{Step: step, Err: err}
}
