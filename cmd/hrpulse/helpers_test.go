package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command in-process with fresh flag values.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolate runs the test in an empty directory with no config-related
// environment leaking in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "GEMINI_API_KEY", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "PORT",
		"HRPULSE_DATABASE_URL", "HRPULSE_MODEL_PATH", "HRPULSE_TRAINING_INPUT", "HRPULSE_NLP_API_KEY",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// rawExport builds a Glassdoor-style export of n unique postings. Even rows
// mention Python and pay $100K-$120K, odd rows pay $50K-$70K.
func rawExport(n int) string {
	var sb strings.Builder
	sb.WriteString("Job Title,Salary Estimate,Job Description,Rating,Company Name,Location\n")
	for i := 0; i < n; i++ {
		salary := "$50K-$70K (Glassdoor est.)"
		desc := "Build dashboards in Excel"
		if i%2 == 0 {
			salary = "$100K-$120K (Glassdoor est.)"
			desc = "<p>Model data with <b>Python</b></p>"
		}
		fmt.Fprintf(&sb, "Data Scientist %d,%q,%q,%.1f,\"Acme %d\n%.1f\",\"Austin, TX\"\n",
			i, salary, desc, 3+float64(i%3)*0.5, i, 3+float64(i%3)*0.5)
	}
	return sb.String()
}
