package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
)

// SafeGo запускает fire-and-forget задачу, перехватывая panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverTask(name)
		fn()
	}()
}

// SafeGoWithContext запускает задачу с собственным контекстом, отвязанным от запроса.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer recoverTask(name)
		fn(ctx)
	}()
}

func recoverTask(name string) {
	if r := recover(); r != nil {
		logger.Log.WithFields(logrus.Fields{
			"task":  name,
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("panic в фоновой задаче")
	}
}
