package interfaces

// Service is the lifecycle of a public interface of the daemon. Start must not
// block.
type Service interface {
	Start() error
	Stop()
}
