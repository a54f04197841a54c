package choreo

import (
	"errors"
	"fmt"

	"github.com/milk9111/trapline/ecs"
)

var (
	ErrKindMismatch = errors.New("choreo: operation does not apply to this actor kind")
	ErrNotChainHead = errors.New("choreo: actor is not the head of its chain")
	ErrTornDown     = errors.New("choreo: runner was torn down")
)

// ConfigurationError reports a scene setup mistake, such as a link that
// would close a cycle. Err carries the underlying sentinel.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("choreo: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnknownActorError reports an actor id the runner does not own.
type UnknownActorError struct {
	Op string
	ID ecs.Entity
}

func (e *UnknownActorError) Error() string {
	return fmt.Sprintf("choreo: %s: unknown actor %s", e.Op, e.ID)
}

func (e *UnknownActorError) Is(target error) bool {
	return target == ecs.ErrUnknownEntity
}

func configErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ecs.ErrUnknownEntity) {
		return err
	}
	return &ConfigurationError{Op: op, Err: err}
}
