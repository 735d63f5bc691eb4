// Package clip puts review text (event ids, trace ids, rationales) on
// the reviewer's clipboard, degrading to a temp file on machines with
// no clipboard at all.
package clip

import (
	"errors"
	"fmt"
	"os"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method names the mechanism that made the text available.
type Method string

const (
	MethodNative Method = "native" // OS clipboard
	MethodOSC52  Method = "osc52"  // terminal escape sequence, reaches the local clipboard over SSH
	MethodFile   Method = "file"   // temp file of last resort
)

// Result reports how the text was made available. FilePath is set only
// for MethodFile, so the caller can show the reviewer where to look.
type Result struct {
	Method   Method
	FilePath string
}

// Seams for tests; both have side effects on the host.
var (
	copyNative   = atotto.WriteAll
	copyTerminal = copyOSC52
)

// Copy places text on the clipboard: native first, then OSC52, then a
// temp file. Only a failed temp-file write is an error; everything
// before that is a fallback.
func Copy(text string) (Result, error) {
	if err := copyNative(text); err == nil {
		return Result{Method: MethodNative}, nil
	}
	if err := copyTerminal(text); err == nil {
		return Result{Method: MethodOSC52}, nil
	}

	path, err := spillToFile(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Terminals silently drop oversized OSC52 payloads; refuse early and
// let the file fallback carry large rationales.
const maxOSC52Payload = 100_000

func copyOSC52(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	if len(text) > maxOSC52Payload {
		return fmt.Errorf("%d bytes exceeds the OSC52 payload cap", len(text))
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("no terminal on stderr")
	}

	seq := osc52.New(text).Limit(maxOSC52Payload)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}

	// Stderr, never stdout: the Bubble Tea renderer owns stdout.
	_, err := seq.WriteTo(os.Stderr)
	return err
}

func spillToFile(text string) (string, error) {
	f, err := os.CreateTemp("", "companion-yank-*.txt")
	if err != nil {
		return "", err
	}

	_, werr := f.WriteString(text)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(f.Name())
		if werr != nil {
			return "", werr
		}
		return "", cerr
	}
	return f.Name(), nil
}
