package supervisor

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// maxRecordSize is the maximum size, in bytes, of a single lifeline
// record (section 6 of the spec: "Maximum record size: 1024 bytes").
const maxRecordSize = 1024

// aliveMessage is the literal sentinel the child sends once its
// initializers have completed successfully.
const aliveMessage = "alive"

// newLifelinePair creates a UNIX-domain, stream-oriented socket pair to
// use as the bidirectional lifeline between parent and child. Index 0 is
// kept by the parent, index 1 is handed to the child via ExtraFiles.
func newLifelinePair() (parentFile, childFile *os.File, err error) {
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("supervisor: socketpair: %w", err)
	}
	parentFile = os.NewFile(uintptr(fds[0]), "lifeline-parent")
	childFile = os.NewFile(uintptr(fds[1]), "lifeline-child")
	return parentFile, childFile, nil
}

// lifeline wraps one end of the socket pair. It is single-owner: only the
// watcher goroutine for its side may call send/recv after construction,
// per spec.md section 4.1 ("The watcher is the sole owner of its
// lifeline end").
type lifeline struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newLifeline(f *os.File) (*lifeline, error) {
	conn, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("supervisor: wrap lifeline fd: %w", err)
	}
	// The duplicate fd from net.FileConn renders f redundant; close our
	// copy so it doesn't linger past the conn's lifetime.
	_ = f.Close()
	return &lifeline{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, maxRecordSize+1),
	}, nil
}

// send writes a single newline-terminated record. Records over
// maxRecordSize are rejected without being written, per spec.md section 6.
func (l *lifeline) send(msg string) error {
	if len(msg) > maxRecordSize {
		return &MessageTooLargeError{Size: len(msg), Max: maxRecordSize}
	}
	if strings.ContainsRune(msg, '\n') {
		return &ProtocolViolationError{Detail: "lifeline record must not contain a newline"}
	}
	_, err := l.conn.Write([]byte(msg + "\n"))
	return err
}

// recv blocks (subject to the conn's read deadline, set by the caller)
// for one newline-terminated record and returns it without the
// trailing newline. io.EOF or a reset signals peer hangup. A record
// longer than maxRecordSize fills the reader's buffer and is reported as
// bufio.ErrBufferFull.
func (l *lifeline) recv() (string, error) {
	line, err := l.reader.ReadSlice('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(line), "\n"), nil
}

func (l *lifeline) close() error {
	return l.conn.Close()
}
