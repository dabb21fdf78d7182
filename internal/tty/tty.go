//go:build !windows && !plan9

// package tty only tries to deal with the basic linux flavor of tty
// handling: raw-ish single-rune reads for the local keyboard jukebox,
// based on github.com/mattn/go-tty and github.com/AlecAivazis/survey/
package tty

import (
	"bufio"
	"context"
	"os"
	"syscall"
	"unsafe"
)

const (
	KeyInterrupt       = '\x03'
	KeyEndTransmission = '\x04'
)

type TTY struct {
	ctx    context.Context
	in     *os.File
	reader *bufio.Reader
	term   syscall.Termios
}

func Open(ctx context.Context) (*TTY, error) {
	in, err := os.Open("/dev/tty")
	if err != nil {
		return nil, err
	}

	t := &TTY{
		ctx:    ctx,
		in:     in,
		reader: bufio.NewReader(in),
	}

	err = t.disableEcho()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// For reading runes one by one we want echo and line buffering gone.
func (t *TTY) disableEcho() error {
	if _, _, err := syscall.Syscall6(syscall.SYS_IOCTL, uintptr(t.in.Fd()), syscall.TCGETS, uintptr(unsafe.Pointer(&t.term)), 0, 0, 0); err != 0 {
		return err
	}

	newState := t.term
	newState.Lflag &^= syscall.ECHO | syscall.ECHONL | syscall.ICANON | syscall.ISIG

	if _, _, err := syscall.Syscall6(syscall.SYS_IOCTL, uintptr(t.in.Fd()), syscall.TCSETS, uintptr(unsafe.Pointer(&newState)), 0, 0, 0); err != 0 {
		return err
	}

	return nil
}

func (t *TTY) RestoreTermMode() error {
	if _, _, err := syscall.Syscall6(syscall.SYS_IOCTL, uintptr(t.in.Fd()), syscall.TCSETS, uintptr(unsafe.Pointer(&t.term)), 0, 0, 0); err != 0 {
		return err
	}

	return nil
}

// ReadRune returns the next rune typed on the terminal. A cancelled context
// reads as end-of-transmission so callers unwind their loops.
func (t *TTY) ReadRune() (r rune, size int, err error) {
	select {
	case <-t.ctx.Done():
		return KeyEndTransmission, 1, nil
	default:
	}

	return t.reader.ReadRune()
}
