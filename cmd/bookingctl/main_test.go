package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorsCmd_RequiresDepartment(t *testing.T) {
	cmd := doctorsCmd()
	cmd.SetArgs([]string{"1"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"department"`)
}

func TestFacilityCmd_RequiresID(t *testing.T) {
	cmd := facilityCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, printJSON(cmd, map[string]int{"indexed": 8}))
	assert.JSONEq(t, `{"indexed":8}`, out.String())
}
