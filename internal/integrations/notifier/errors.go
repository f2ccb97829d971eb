package notifier

import "errors"

var (
	// ErrInvalidConfig некорректная конфигурация SMTP
	ErrInvalidConfig = errors.New("notifier: invalid config")

	// ErrBuildMessage не удалось собрать письмо
	ErrBuildMessage = errors.New("notifier: failed to build message")

	// ErrSend не удалось отправить письмо
	ErrSend = errors.New("notifier: failed to send message")
)
