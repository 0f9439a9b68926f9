//go:build linux
// +build linux

package device

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

type jsDevice struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
}

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13
)

// Open opens /dev/input/jsN.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &jsDevice{file: f, index: index}
	var name [256]byte
	for _, req := range []struct {
		code uint
		ptr  unsafe.Pointer
	}{
		{iocGAXES, unsafe.Pointer(&d.axes)},
		{iocGBUTTONS, unsafe.Pointer(&d.buttons)},
		{iocGNAME, unsafe.Pointer(&name)},
	} {
		if errno := d.ioctl(req.code, req.ptr); errno != 0 {
			f.Close()
			return nil, fmt.Errorf("js%d: %w", index, errno)
		}
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first device present from startIndex.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, ErrNotFound
}

func (d *jsDevice) Close() error { return d.file.Close() }
func (d *jsDevice) Index() int   { return d.index }
func (d *jsDevice) Name() string { return d.name }
func (d *jsDevice) Axes() int    { return int(d.axes) }
func (d *jsDevice) Buttons() int { return int(d.buttons) }

// ReadEvent implements Device. Unknown records are skipped.
func (d *jsDevice) ReadEvent() (Event, error) {
	var buf [EventSize]byte
	for {
		if _, err := io.ReadFull(d.file, buf[:]); err != nil {
			return Event{}, err
		}
		ev, err := DecodeEvent(buf[:])
		if err != ErrUnknownEvent {
			return ev, err
		}
	}
}

func (d *jsDevice) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return errno
}
