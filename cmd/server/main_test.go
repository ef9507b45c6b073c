package main

import (
	"bytes"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "gym-club version")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "check-expired", "auto-renew", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestListenFallsBackWhenPortBusy(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	ln, err := listen(strconv.Itoa(busyPort), []string{"0"})
	require.NoError(t, err)
	defer ln.Close()
	assert.NotEqual(t, busyPort, ln.Addr().(*net.TCPAddr).Port)
}

func TestListenRejectsInvalidPort(t *testing.T) {
	_, err := listen("not-a-port", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not-a-port"))
}
