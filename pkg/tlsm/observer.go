package tlsm

import "github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"

type noopObserver struct{}

func (noopObserver) RecordWrite(int)      {}
func (noopObserver) RecordFlush()         {}
func (noopObserver) RecordCompaction(int) {}

func orNoop(o lsmcore.Observer) lsmcore.Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
