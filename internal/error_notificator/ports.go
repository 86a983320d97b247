package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает оператору об ошибке пайплайна
	Notify(ctx context.Context, err error, details string) error
}
