package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrStagePanic wraps a panic recovered from a stage.
var ErrStagePanic = errors.New("pipeline stage panicked")

// Group runs the stages of one pipeline and joins them. Errors are kept in
// the order stages were started, so Wait reports the most upstream failure.
type Group struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// Go starts fn as a named stage. A panic inside fn is recovered and
// reported as an ErrStagePanic rather than crashing the process.
func (g *Group) Go(name string, fn func() error) {
	g.mu.Lock()
	idx := len(g.errs)
	g.errs = append(g.errs, nil)
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := runStage(fn); err != nil {
			g.mu.Lock()
			g.errs[idx] = fmt.Errorf("%s: %w", name, err)
			g.mu.Unlock()
		}
	}()
}

// Wait blocks until every stage has returned and reports the first error
// in start order.
func (g *Group) Wait() error {
	g.wg.Wait()
	for _, err := range g.errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Errors returns every stage error in start order. Only valid after Wait.
func (g *Group) Errors() []error {
	var out []error
	for _, err := range g.errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func runStage(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = fmt.Errorf("%w: %w", ErrStagePanic, perr)
			} else {
				err = fmt.Errorf("%w: %v", ErrStagePanic, p)
			}
		}
	}()
	return fn()
}
