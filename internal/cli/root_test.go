package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes one CLI invocation against the database at
// dbPath and returns its combined output.
func runCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--connection", "sqlite://" + dbPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandLineRoundTrip(t *testing.T) {
	dir := t.TempDir()
	// Keep config file discovery away from the repository.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dbPath := filepath.Join(dir, "ccdb.sqlite")

	out, err := runCommand(t, dbPath, "mkdir", "/CAL")
	require.NoError(t, err)
	assert.Contains(t, out, "/CAL")

	_, err = runCommand(t, dbPath, "mkdir", "/CAL/ecal")
	require.NoError(t, err)

	_, err = runCommand(t, dbPath, "mktbl", "/CAL/ecal/gains",
		"-r", "2", "g0(double)", "g1(double)", "-c", "test gains")
	require.NoError(t, err)

	_, err = runCommand(t, dbPath, "mkvar", "mc", "-c", "Monte Carlo")
	require.NoError(t, err)

	dataFile := filepath.Join(dir, "gains.txt")
	require.NoError(t, os.WriteFile(dataFile, []byte("1.0 2.0\n3.0 4.0\n"), 0o644))

	out, err = runCommand(t, dbPath, "add", "/CAL/ecal/gains",
		"-r", "0-999", dataFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Created assignment")

	out, err = runCommand(t, dbPath, "dump", "/CAL/ecal/gains", "-r", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "variation default")
	assert.Contains(t, out, "1.0")
	assert.Contains(t, out, "4.0")

	out, err = runCommand(t, dbPath, "ls", "/CAL")
	require.NoError(t, err)
	assert.Contains(t, out, "ecal/")

	out, err = runCommand(t, dbPath, "ls", "/CAL/ecal")
	require.NoError(t, err)
	assert.Contains(t, out, "gains")

	out, err = runCommand(t, dbPath, "search", "*gain*")
	require.NoError(t, err)
	assert.Contains(t, out, "/CAL/ecal/gains")

	// Table data blocks deletion of the table.
	_, err = runCommand(t, dbPath, "rm", "/CAL/ecal/gains")
	require.Error(t, err)
}

func TestCommandLineErrors(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dbPath := filepath.Join(dir, "ccdb.sqlite")

	_, err = runCommand(t, dbPath, "dump", "/no/such/table")
	require.Error(t, err)

	_, err = runCommand(t, dbPath, "mkdir", "/missing/parent/child")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ccdb")
	assert.Contains(t, buf.String(), Version)
}
