package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/babappa/babappa/pipeline"
	"github.com/babappa/babappa/runstore"
)

// external tool execution with run tracking
var (
	runCmd = app.Command("run", "run one external pipeline stage")
	runID  = runCmd.Flag("id", "run identifier for status tracking").String()
	runDB  = runCmd.Flag("db", "run status database").Default("babappa_runs.db").String()
	runDir = runCmd.Flag("dir", "working directory").Default(".").String()
	runOut = runCmd.Flag("expect", "output file that must exist after the run").Strings()
	runArg = runCmd.Arg("command", "binary and its arguments").Required().Strings()
)

// logLine mirrors tool output into the run record, one line at a time.
type logLine struct {
	store *runstore.Store
	id    string
	buf   strings.Builder
}

func (l *logLine) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		s := l.buf.String()
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		if err := l.store.AppendLog(l.id, s[:i]); err != nil {
			return len(p), err
		}
		l.buf.Reset()
		l.buf.WriteString(s[i+1:])
	}
	return len(p), nil
}

func runTool() error {
	argv := *runArg
	tool := &pipeline.Tool{
		Name:    argv[0],
		Binary:  argv[0],
		Args:    argv[1:],
		Outputs: *runOut,
	}

	if *runID == "" {
		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		return tool.Run(context.Background(), *runDir, nil, w)
	}

	store, err := runstore.Open(*runDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Create(*runID); err != nil {
		return err
	}
	sink := &logLine{store: store, id: *runID}
	runErr := tool.Run(context.Background(), *runDir, nil, sink)

	status := runstore.StatusFinished
	if runErr != nil {
		status = runstore.StatusFailed
		if err := store.AppendLog(*runID, runErr.Error()); err != nil {
			log.Error(err)
		}
	}
	if err := store.SetStatus(*runID, status); err != nil {
		log.Error(err)
	}
	return runErr
}
