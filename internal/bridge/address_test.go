package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelName_DefaultsToLogicalName(t *testing.T) {
	t.Setenv("RP_BRIDGE", "")
	assert.Equal(t, ClientQueue, ChannelName(ClientQueue))
}

func TestChannelName_HonorsOverride(t *testing.T) {
	t.Setenv("RP_BRIDGE", "session-42")
	assert.Equal(t, "session-42.agent_queue", ChannelName(AgentQueue))
}

func TestWriteAndReadAddressFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeAddressFile(dir, "ch", "tcp://127.0.0.1:5555", "tcp://127.0.0.1:5556"))

	ep, err := readAddressFile(dir, "ch")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:5555", ep.put)
	assert.Equal(t, "tcp://127.0.0.1:5556", ep.get)
}

func TestReadAddressFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := readAddressFile(dir, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestParseAddressFile_Malformed(t *testing.T) {
	_, err := parseAddressFile([]byte("garbage\n"))
	require.Error(t, err)
}

func TestRemoveAddressFile_MissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, removeAddressFile(dir, "never-existed"))
}

func TestRemoveAddressFile_DeletesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ch.url")
	require.NoError(t, os.WriteFile(path, []byte("PUT x\nGET y\n"), 0o644))
	require.NoError(t, removeAddressFile(dir, "ch"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
