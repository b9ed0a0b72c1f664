package tester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"vsp/internal/fileio"
)

const (
	// CaseConfigName is the builtin tester's config file inside a test
	// case directory.
	CaseConfigName = "case.yaml"
	// ReferenceDirName holds the reference files compared by Test.
	ReferenceDirName = "reference"
	// finishMarker signals a completed run inside the work directory.
	finishMarker = ".runfinished"

	stdinName  = "STDIN"
	stdoutName = "STDOUT"
	stderrName = "STDERR"
)

// CaseConfig is the on-disk schema of case.yaml.
type CaseConfig struct {
	// Command is the argv executed in the work directory during Run.
	Command []string `yaml:"command"`
	// Input is the directory (relative to the test dir) whose entries
	// are copied into the work directory during Prepare.
	Input string `yaml:"input"`
	// Compare lists work-directory files that must match their
	// counterpart under the reference directory.
	Compare []string `yaml:"compare"`
}

// LoadCaseConfig reads and validates the case.yaml of a test case.
func LoadCaseConfig(testDir string) (*CaseConfig, error) {
	path := filepath.Join(testDir, CaseConfigName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case config: %w", err)
	}
	var cfg CaseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("%s: command is required", path)
	}
	if cfg.Input == "" {
		cfg.Input = "input"
	}
	return &cfg, nil
}

// Simple is the builtin tester: it copies an input directory into the
// work directory, executes a command line there with file-backed
// standard streams, marks finished runs with a marker file and compares
// output files against reference files byte for byte.
type Simple struct {
	testDir string
	workDir string
	cfg     *CaseConfig
	log     io.Writer
}

// NewSimple creates a Simple tester for one test case.
func NewSimple(testDir, workDir string, cfg *CaseConfig, log io.Writer) *Simple {
	return &Simple{testDir: testDir, workDir: workDir, cfg: cfg, log: log}
}

// Prepare copies every entry of the input directory into the work
// directory. A missing input directory means the case needs no inputs.
func (s *Simple) Prepare(ctx context.Context) error {
	src := filepath.Join(s.testDir, s.cfg.Input)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return copyTree(src, s.workDir)
}

// Run executes the configured command line in the work directory. A
// STDIN file, if present, is piped to the command; standard output and
// error are captured into STDOUT and STDERR files. A marker file
// records run completion.
func (s *Simple) Run(ctx context.Context) error {
	marker := filepath.Join(s.workDir, finishMarker)
	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return err
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command[0], s.cfg.Command[1:]...)
	cmd.Dir = s.workDir

	if stdin, err := os.Open(filepath.Join(s.workDir, stdinName)); err == nil {
		defer stdin.Close()
		cmd.Stdin = stdin
	}
	stdout, err := os.Create(filepath.Join(s.workDir, stdoutName))
	if err != nil {
		return err
	}
	defer stdout.Close()
	stderr, err := os.Create(filepath.Join(s.workDir, stderrName))
	if err != nil {
		return err
	}
	defer stderr.Close()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", strings.Join(s.cfg.Command, " "), err)
	}
	return os.WriteFile(marker, nil, 0644)
}

// RunFinished reports whether the completion marker exists.
func (s *Simple) RunFinished() bool {
	_, err := os.Stat(filepath.Join(s.workDir, finishMarker))
	return err == nil
}

// Test compares each configured output file against its reference. A
// missing or differing output is a controlled failure; a missing
// reference file is an infrastructure error.
func (s *Simple) Test(ctx context.Context) (bool, error) {
	for _, name := range s.cfg.Compare {
		got := filepath.Join(s.workDir, name)
		want := filepath.Join(s.testDir, ReferenceDirName, name)

		wantData, err := readAll(want)
		if err != nil {
			return false, fmt.Errorf("reference file %s: %w", want, err)
		}
		gotData, err := readAll(got)
		if err != nil {
			if os.IsNotExist(err) {
				s.logf("missing output file %s", name)
				return false, nil
			}
			return false, err
		}
		if !bytes.Equal(gotData, wantData) {
			s.logf("output file %s differs from reference", name)
			return false, nil
		}
		s.logf("output file %s matches reference", name)
	}
	return true, nil
}

// Cleanup does nothing; the engine removes the work directory.
func (s *Simple) Cleanup(ctx context.Context) error {
	return nil
}

func (s *Simple) logf(format string, args ...any) {
	if s.log != nil {
		fmt.Fprintf(s.log, format+"\n", args...)
	}
}

func readAll(name string) ([]byte, error) {
	f, err := fileio.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// copyTree copies the entries of src into dst, which must exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
