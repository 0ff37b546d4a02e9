package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrProviderUnavailable 外部服务（简历存储 / 身份认证）未配置或暂不可用
var ErrProviderUnavailable = errors.New("外部服务不可用")
