package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedStream 按脚本吐增量的假流，耗尽后报告预设的错误
type scriptedStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

func (s *scriptedStream) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *scriptedStream) Current() string {
	return s.chunks[s.pos-1]
}

func (s *scriptedStream) Err() error {
	if s.pos >= len(s.chunks) {
		return s.err
	}
	return nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// recordingWriter 记录所有写出的增量，可在第 failAt 次写入时失败
type recordingWriter struct {
	writes []string
	failAt int
}

func (w *recordingWriter) Write(chunk string) error {
	if w.failAt > 0 && len(w.writes)+1 == w.failAt {
		return errors.New("client gone")
	}
	w.writes = append(w.writes, chunk)
	return nil
}

func TestPump_RelaysEverything(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"<!DOCTYPE html>", "<html>", "<body>hi</body>"}}
	writer := &recordingWriter{}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err != nil {
		t.Fatalf("Pump() error: %v", err)
	}

	if result.State != StateCompleted {
		t.Fatalf("Expected state completed, got %s", result.State)
	}
	if got := strings.Join(writer.writes, ""); got != result.Artifact {
		t.Fatalf("Written bytes and artifact diverged: %q vs %q", got, result.Artifact)
	}
	if result.Artifact != "<!DOCTYPE html><html><body>hi</body>" {
		t.Fatalf("Unexpected artifact: %q", result.Artifact)
	}
	if result.Written != len(result.Artifact) {
		t.Fatalf("Expected written %d, got %d", len(result.Artifact), result.Written)
	}
	if !stream.closed {
		t.Fatal("Expected upstream stream to be closed")
	}
}

func TestPump_StopsAtMarker(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"<html>", "<body></body>", "</html>", "trailing commentary"}}
	writer := &recordingWriter{}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err != nil {
		t.Fatalf("Pump() error: %v", err)
	}

	if result.State != StateEarlyStopped {
		t.Fatalf("Expected state early_stopped, got %s", result.State)
	}
	if !strings.HasSuffix(result.Artifact, DocumentEndMarker) {
		t.Fatalf("Expected artifact to end at the marker, got %q", result.Artifact)
	}
	if strings.Contains(result.Artifact, "trailing") {
		t.Fatalf("Relayed content past the marker: %q", result.Artifact)
	}
	if stream.pos != 3 {
		t.Fatalf("Expected no pulls past the marker chunk, pulled %d", stream.pos)
	}
	if !stream.closed {
		t.Fatal("Expected upstream stream to be closed after early stop")
	}
}

func TestPump_MarkerSplitAcrossChunks(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"<html><body></body></ht", "ml>", "extra"}}
	writer := &recordingWriter{}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err != nil {
		t.Fatalf("Pump() error: %v", err)
	}

	if result.State != StateEarlyStopped {
		t.Fatalf("Expected state early_stopped, got %s", result.State)
	}
	if result.Artifact != "<html><body></body></html>" {
		t.Fatalf("Unexpected artifact: %q", result.Artifact)
	}
}

func TestPump_SkipsEmptyChunks(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"", "a", "", "b", ""}}
	writer := &recordingWriter{}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err != nil {
		t.Fatalf("Pump() error: %v", err)
	}

	if result.State != StateCompleted {
		t.Fatalf("Empty chunk must not terminate the stream, got state %s", result.State)
	}
	if len(writer.writes) != 2 {
		t.Fatalf("Expected 2 writes, got %d: %v", len(writer.writes), writer.writes)
	}
	if result.Artifact != "ab" {
		t.Fatalf("Unexpected artifact: %q", result.Artifact)
	}
}

func TestPump_UpstreamFailure(t *testing.T) {
	stream := &scriptedStream{
		chunks: []string{"<html><body>part"},
		err:    errors.New("connection reset"),
	}
	writer := &recordingWriter{}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err == nil {
		t.Fatal("Expected an error for an interrupted stream")
	}

	if result.State != StateInterrupted {
		t.Fatalf("Expected state interrupted, got %s", result.State)
	}
	if result.Artifact != "<html><body>part" {
		t.Fatalf("Expected partial artifact preserved, got %q", result.Artifact)
	}
	if !stream.closed {
		t.Fatal("Expected upstream stream to be closed after failure")
	}
}

func TestPump_WriteFailure(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"a", "b", "c"}}
	writer := &recordingWriter{failAt: 2}

	result, err := Pump(context.Background(), stream, writer, MarkerStop(DocumentEndMarker))
	if err == nil {
		t.Fatal("Expected an error when the client write fails")
	}

	if result.State != StateInterrupted {
		t.Fatalf("Expected state interrupted, got %s", result.State)
	}
	if result.Artifact != "a" {
		t.Fatalf("Expected artifact to hold only delivered chunks, got %q", result.Artifact)
	}
	if !stream.closed {
		t.Fatal("Expected upstream stream to be closed after write failure")
	}
}

func TestPump_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &scriptedStream{chunks: []string{"never delivered"}}
	writer := &recordingWriter{}

	result, err := Pump(ctx, stream, writer, MarkerStop(DocumentEndMarker))
	if err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}

	if result.State != StateInterrupted {
		t.Fatalf("Expected state interrupted, got %s", result.State)
	}
	if len(writer.writes) != 0 {
		t.Fatalf("Expected no writes after cancellation, got %v", writer.writes)
	}
	if !stream.closed {
		t.Fatal("Expected upstream stream to be closed after cancellation")
	}
}
