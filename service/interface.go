// Package service runs long-lived subsystems through a common lifecycle
package service

// Service is a subsystem the Hub starts and stops, such as the audio
// engine or the status registry
//
// The Hub calls Init on every service, then Start on every service, each
// pass with dependencies first. Stop runs in reverse and may be called
// more than once.
type Service interface {
	Name() string

	// Dependencies names the services that must initialize first
	Dependencies() []string

	// Init receives the args given to Hub.InitAll; services ignore args they
	// do not understand unless noted otherwise
	Init(args ...any) error

	Start() error

	Stop() error
}
