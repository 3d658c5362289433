package progress

import (
	"testing"
)

func TestDirStorage_RoundTrip(t *testing.T) {
	storage, err := NewDirStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStorage failed: %v", err)
	}

	if err := storage.Write(ProgressKey, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := storage.Read(ProgressKey)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("Read = %q, want written payload", data)
	}
}

func TestDirStorage_AbsentKeyIsNil(t *testing.T) {
	storage, err := NewDirStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStorage failed: %v", err)
	}

	data, err := storage.Read("never-written")
	if err != nil {
		t.Fatalf("absent key should not error: %v", err)
	}
	if data != nil {
		t.Errorf("absent key should read as nil, got %q", data)
	}
}
