package services

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherSurvivesFailures(t *testing.T) {
	d := NewDispatcher(0)
	var done int32

	d.Go("ok", func() error { atomic.AddInt32(&done, 1); return nil })
	d.Go("fails", func() error { atomic.AddInt32(&done, 1); return errors.New("smtp down") })
	d.Go("panics", func() error { atomic.AddInt32(&done, 1); panic("boom") })
	d.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&done))
}
