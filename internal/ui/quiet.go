package ui

// quietPresenter consumes events but produces no output. Failures still
// reach the log and the exit status.
type quietPresenter struct{}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}
