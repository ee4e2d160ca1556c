package shutdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsHooksInPriorityOrder(t *testing.T) {
	var order []string
	AddHookWithPriority("flush", PriorityReport, func() { order = append(order, "flush") })
	AddHookWithPriority("stop", PriorityIngress, func() { order = append(order, "stop") })
	AddHookWithPriority("kill", PriorityWorkers, func() { order = append(order, "kill") })

	Shutdown()
	assert.Equal(t, []string{"stop", "kill", "flush"}, order)

	// drained heap, second call is a no-op
	Shutdown()
	assert.Len(t, order, 3)
}

func TestShutdownSurvivesPanickingHook(t *testing.T) {
	ran := false
	AddHookWithPriority("boom", PriorityIngress, func() { panic("boom") })
	AddHook("after", func() { ran = true })

	Shutdown()
	assert.True(t, ran)
}

func TestRecoverAndShutdownDrainsHooks(t *testing.T) {
	ran := false
	AddHook("flush", func() { ran = true })

	RecoverAndShutdown()
	assert.True(t, ran)
}
