package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"

	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/platform/logger"
)

type recordingSink struct {
	entries []repository.Entry
	err     error
}

func (s *recordingSink) Append(e repository.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func TestMirrorTaskRoundTrip(t *testing.T) {
	task, err := NewPostalCodeMirrorTask(PostalCodeMirrorPayload{City: "Nowhere", Region: "ZZ", Code: "12345-678"})
	if err != nil {
		t.Fatalf("NewPostalCodeMirrorTask: %v", err)
	}
	if task.Type() != TaskPostalCodeMirror {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	w := &Worker{sink: &recordingSink{}, log: logger.Discard()}
	if err := w.handlePostalCodeMirror(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := w.sink.(*recordingSink).entries
	if len(got) != 1 || got[0].Code != "12345-678" || got[0].Source != repository.SourceUser {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestMirrorRejectsBadPayloadWithoutRetry(t *testing.T) {
	w := &Worker{sink: &recordingSink{}, log: logger.Discard()}

	for _, payload := range [][]byte{[]byte("{"), []byte(`{"city":"Nowhere"}`)} {
		err := w.handlePostalCodeMirror(context.Background(), asynq.NewTask(TaskPostalCodeMirror, payload))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("expected SkipRetry for %s, got %v", payload, err)
		}
	}
}

func TestMirrorRetriesSinkFailure(t *testing.T) {
	w := &Worker{sink: &recordingSink{err: errors.New("disk full")}, log: logger.Discard()}
	task, _ := NewPostalCodeMirrorTask(PostalCodeMirrorPayload{City: "a", Region: "b", Code: "c"})

	err := w.handlePostalCodeMirror(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestMirrorWritesUserWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.xlsx")
	w := &Worker{sink: repository.NewUserWorkbook(path), log: logger.Discard()}
	task, _ := NewPostalCodeMirrorTask(PostalCodeMirrorPayload{City: "Nowhere", Region: "ZZ", Code: "00000"})

	if err := w.handlePostalCodeMirror(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	entries, err := repository.ReadWorkbook(path, repository.SourceUser)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(entries) != 1 || entries[0].City != "Nowhere" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache:6380/2", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "cache:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected opt %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure tls config")
	}

	if _, err := redisClientOpt("not a url", false); err == nil {
		t.Fatalf("expected parse error")
	}
}
