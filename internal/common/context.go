package common

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifyInterrupt calls onSignal every time the process receives SIGINT or
// SIGTERM until the returned stop function is called.
//
// Example usage:
//
//	stop := common.NotifyInterrupt(token.Cancel)
//	defer stop()
func NotifyInterrupt(onSignal func()) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-sigChan:
				onSignal()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
