package core

import (
	"log"
	"runtime/debug"
	"sync/atomic"
)

// CrashHandler receives the recovered value of a panicking goroutine
type CrashHandler func(r any)

var crashHandler atomic.Pointer[CrashHandler]

// SetCrashHandler replaces the handler used by Go; nil restores the default
func SetCrashHandler(h CrashHandler) {
	if h == nil {
		crashHandler.Store(nil)
		return
	}
	crashHandler.Store(&h)
}

// HandleCrash logs the panic and its stack trace, or forwards it to the installed handler
func HandleCrash(r any) {
	if r == nil {
		return
	}
	if h := crashHandler.Load(); h != nil {
		(*h)(r)
		return
	}
	log.Printf("gallop: recovered panic: %v\n%s", r, debug.Stack())
}

// Go runs a function in a new goroutine with panic recovery
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
