// Graceful shutdown: SIGINT/SIGTERM отменяют корневой контекст, а
// отложенная функция закрывает лог.

package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdown отменяет контекст при SIGINT или SIGTERM.
//
// Возвращает функцию для defer, которая закрывает лог:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer SetupGracefulShutdown(cancel)()
func SetupGracefulShutdown(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
		Close()
	}
}

// SetupGracefulShutdownWithContext создаёт контекст и настраивает shutdown.
//
//	ctx, shutdown := SetupGracefulShutdownWithContext()
//	defer shutdown()
func SetupGracefulShutdownWithContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := SetupGracefulShutdown(cancel)
	return ctx, func() {
		shutdown()
		cancel()
	}
}
