// Package persistence stores interaction graphs on disk.
//
// Two layouts are supported: a CRC-framed append-only log of node and edge
// records, which lets repeated fetch runs accumulate into one graph, and a
// JSON table snapshot (node list plus edge list).
package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/sanonone/hashgraph/pkg/graph"
)

// GraphLog manages an append-only graph log file. Edges are monotonic, so
// the log only ever grows; each node and edge is written once.
type GraphLog struct {
	mu    sync.Mutex
	file  *os.File
	buf   *bufio.Writer
	fw    *FrameWriter
	state *graph.Builder
}

// AppendResult counts the entries written by one Append call.
type AppendResult struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// OpenGraphLog opens or creates the log at path and replays its content.
// A torn frame at the tail (crash during write) is cut off so new frames
// start on a clean boundary. Only one GraphLog may be open per file at a
// time; callers serialise access.
func OpenGraphLog(path string) (*GraphLog, error) {
	state, good, err := replay(path)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(path); err == nil && info.Size() > good {
		if err := os.Truncate(path, good); err != nil {
			return nil, fmt.Errorf("failed to truncate graph log tail: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph log: %w", err)
	}

	buf := bufio.NewWriter(file)
	return &GraphLog{
		file:  file,
		buf:   buf,
		fw:    NewFrameWriter(buf),
		state: state,
	}, nil
}

// Append writes every node and edge of g that the log does not hold yet,
// then syncs the file.
func (l *GraphLog) Append(g *graph.Graph) (AppendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res AppendResult
	for _, id := range g.Nodes() {
		if !l.state.AddNode(id) {
			continue
		}
		if err := l.fw.WriteFrame(OpNode, []byte(id)); err != nil {
			return res, err
		}
		res.Nodes++
	}
	for _, e := range g.Edges() {
		if !l.state.AddEdge(e.From, e.To) {
			continue
		}
		if err := l.fw.WriteFrame(OpEdge, EncodeEdge(e.From, e.To)); err != nil {
			return res, err
		}
		res.Edges++
	}

	if err := l.buf.Flush(); err != nil {
		return res, err
	}
	return res, l.file.Sync()
}

// Graph returns a snapshot of everything the log holds.
func (l *GraphLog) Graph() *graph.Graph {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Graph()
}

// Close flushes and closes the underlying file.
func (l *GraphLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.buf.Flush(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// ReplayGraphLog rebuilds the graph stored at path without opening it for
// writing. A missing file yields an empty graph.
func ReplayGraphLog(path string) (*graph.Graph, error) {
	state, _, err := replay(path)
	if err != nil {
		return nil, err
	}
	return state.Graph(), nil
}

// replay reads frames until the end of the file or the first damaged frame.
// It returns the rebuilt state and the offset of the last intact frame.
func replay(path string) (*graph.Builder, int64, error) {
	state := graph.NewBuilder()

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return state, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open graph log: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var offset int64
	for {
		frame, n, err := ReadFrame(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			// Damaged tail: keep what was read so far.
			slog.Warn("[GraphLog] Truncating damaged tail", "path", path, "offset", offset, "error", err)
			break
		}

		switch frame.Op {
		case OpNode:
			if len(frame.Payload) == 0 {
				return nil, 0, fmt.Errorf("node frame at offset %d: %w", offset, ErrMalformedPayload)
			}
			state.AddNode(string(frame.Payload))
		case OpEdge:
			from, to, err := DecodeEdge(frame.Payload)
			if err != nil {
				return nil, 0, fmt.Errorf("edge frame at offset %d: %w", offset, err)
			}
			state.AddEdge(from, to)
		default:
			return nil, 0, fmt.Errorf("frame at offset %d (op 0x%02x): %w", offset, frame.Op, ErrUnknownOp)
		}
		offset += int64(n)
	}
	return state, offset, nil
}
