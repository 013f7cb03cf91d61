package csvio

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// XZWriter streams data through the xz compressor to produce .xz files.
// It spawns an external xz process and pipes data through stdin.
type XZWriter struct {
	file    *os.File
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	path    string
	mu      sync.Mutex
	closed  bool
	waitErr error
	waitCh  chan struct{}
}

// NewXZWriter creates dir/filename.csv.xz fed by an xz subprocess.
// Presets outside 0-9 fall back to 6.
func NewXZWriter(dir, filename string, preset int) (*XZWriter, error) {
	path := filepath.Join(dir, filename+XZExt)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if preset < 0 || preset > 9 {
		preset = 6
	}

	cmd := exec.Command("xz", "-c", fmt.Sprintf("-%d", preset))
	cmd.Stdout = file
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to start xz: %w", err)
	}

	w := &XZWriter{
		file:   file,
		cmd:    cmd,
		stdin:  stdin,
		path:   path,
		waitCh: make(chan struct{}),
	}

	go func() {
		w.waitErr = cmd.Wait()
		close(w.waitCh)
	}()

	return w, nil
}

// Write implements io.Writer, streaming data to the xz compressor
func (w *XZWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, fmt.Errorf("writer is closed")
	}
	return w.stdin.Write(p)
}

// Close signals EOF to xz, waits for it to exit, then closes the file.
func (w *XZWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.stdin.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to close xz stdin: %w", err)
	}

	<-w.waitCh
	fileErr := w.file.Close()

	// xz error takes precedence
	if w.waitErr != nil {
		return fmt.Errorf("xz process failed: %w", w.waitErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close output file: %w", fileErr)
	}
	return nil
}

// Path returns the full path to the .xz file
func (w *XZWriter) Path() string {
	return w.path
}

// xzReader decompresses a .xz file through `xz -dc`
type xzReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	eof    bool
}

func newXZReader(path string) (*xzReader, error) {
	cmd := exec.Command("xz", "-dc", path)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start xz: %w", err)
	}
	return &xzReader{cmd: cmd, stdout: stdout}, nil
}

func (r *xzReader) Read(p []byte) (int, error) {
	n, err := r.stdout.Read(p)
	if err == io.EOF {
		r.eof = true
	}
	return n, err
}

// Close reaps the xz process. A reader closed before EOF kills xz and
// ignores its exit status.
func (r *xzReader) Close() error {
	if !r.eof {
		r.cmd.Process.Kill()
		r.cmd.Wait()
		return nil
	}
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("xz process failed: %w", err)
	}
	return nil
}

// CheckXZAvailable verifies that xz is installed and accessible.
// Returns nil if xz is available, or an error with installation guidance.
func CheckXZAvailable() error {
	cmd := exec.Command("xz", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("xz not found: %w\nInstall with: apt install xz-utils (Linux) or brew install xz (macOS)", err)
	}
	return nil
}
