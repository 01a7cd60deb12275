package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearClusterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRole, EnvWorkerID, "NODE_APP_INSTANCE", "pm_id", "INSTANCE_ID"} {
		t.Setenv(key, "")
	}
}

func TestIsWorker(t *testing.T) {
	clearClusterEnv(t)
	assert.False(t, IsWorker())

	t.Setenv(EnvRole, RoleWorker)
	assert.True(t, IsWorker())

	t.Setenv(EnvRole, " Worker ")
	assert.True(t, IsWorker())
}

func TestWorkerID(t *testing.T) {
	clearClusterEnv(t)
	assert.Equal(t, 0, WorkerID())

	t.Setenv(EnvWorkerID, "3")
	assert.Equal(t, 3, WorkerID())

	t.Setenv(EnvWorkerID, "bogus")
	assert.Equal(t, 0, WorkerID())
}

func TestShouldRunCron(t *testing.T) {
	clearClusterEnv(t)
	assert.True(t, ShouldRunCron())

	// Only the first worker runs cron in cluster mode.
	t.Setenv(EnvRole, RoleWorker)
	t.Setenv(EnvWorkerID, "1")
	assert.True(t, ShouldRunCron())

	t.Setenv(EnvWorkerID, "2")
	assert.False(t, ShouldRunCron())
}

func TestShouldRunCronUnderProcessManager(t *testing.T) {
	clearClusterEnv(t)

	t.Setenv("INSTANCE_ID", "0")
	assert.True(t, ShouldRunCron())

	t.Setenv("INSTANCE_ID", "1")
	assert.False(t, ShouldRunCron())
}

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, validateOptions(Options{}))
	assert.NoError(t, validateOptions(Options{Enable: true, Workers: 0}))
	assert.NoError(t, validateOptions(Options{Enable: true, Workers: 4}))
	assert.Error(t, validateOptions(Options{Enable: true, Workers: -1}))
}
