package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func callMain() (int, string) {
	var exitCode int
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
		panic("exit")
	}

	output := captureOutput(func() {
		defer func() {
			if r := recover(); r != nil && r != "exit" {
				panic(r)
			}
		}()
		RealMain()
	})
	return exitCode, output
}

func TestRealMain(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{"no arguments", []string{"feedapp"}, 1, "Usage: feedapp <command>"},
		{"help command", []string{"feedapp", "help"}, 0, "Usage: feedapp <command> [options]"},
		{"version command", []string{"feedapp", "version"}, 0, "feedapp version " + CliVersion},
		{"unknown command", []string{"feedapp", "unknown"}, 1, "Unknown command: unknown"},
		{"restore without file", []string{"feedapp", "restore"}, 1, "Error: backup file path required for restore"},
		{"token without user", []string{"feedapp", "token"}, 1, "Error: user id required for token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			exitCode, output := callMain()

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestPrintHelp(t *testing.T) {
	output := captureOutput(func() {
		printHelp()
	})

	for _, cmd := range []string{"serve", "token", "init", "clean", "backup", "restore", "version", "help"} {
		assert.Contains(t, output, cmd)
	}
}
