package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusSink_ConcurrentAccess(t *testing.T) {
	r := require.New(t)

	sink := &statusSink{}

	// writers on a command goroutine, reader on the event loop
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sink.ShowSpinnerFrame(fmt.Sprintf("working %d", i))
			sink.ReportStatus(fmt.Sprintf("status %d", i))
		}
		sink.ReportError("boom")
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sink.snapshot()
		}
	}()

	wg.Wait()

	_, _, errText := sink.snapshot()
	r.Equal("boom", errText)
}

func TestStatusSink_StatusClearsError(t *testing.T) {
	r := require.New(t)

	sink := &statusSink{}
	sink.ReportError("connect failed")
	sink.ReportStatus("retrying")

	_, status, errText := sink.snapshot()
	r.Equal("retrying", status)
	r.Empty(errText)
}

func TestStatusSink_CancelRequestIsOneShot(t *testing.T) {
	r := require.New(t)

	sink := &statusSink{}
	r.False(sink.PollCancelKey())

	sink.RequestCancel()
	r.True(sink.PollCancelKey())

	// one keypress cancels at most one operation
	r.False(sink.PollCancelKey())
}
