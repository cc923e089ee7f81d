package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JonMunkholm/vetimport/internal/core"
)

type fakeGetter struct {
	objects map[string]string
	calls   []string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	ref := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, ref)
	body, ok := f.objects[ref]
	if !ok {
		return nil, errors.New("api error NoSuchKey: The specified key does not exist.")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://burials/2024/ut.csv", "burials", "2024/ut.csv", false},
		{"S3://burials/ut.csv", "burials", "ut.csv", false},
		{"s3://burials", "", "", true},
		{"s3://burials/", "", "", true},
		{"s3:///key.csv", "", "", true},
		{"/tmp/ut.csv", "", "", true},
	}

	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URI(%q) = %q, %q; want %q, %q", tt.uri, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestOpener_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ut.csv")
	if err := os.WriteFile(path, []byte("a,b\nc,d\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	opener := NewOpener(S3Config{}, 0)
	rc, size, err := opener.Open(t.Context(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	if size != 8 {
		t.Errorf("size = %d, want 8", size)
	}

	rows, err := opener.Load(t.Context(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestOpener_MissingFile(t *testing.T) {
	_, _, err := NewOpener(S3Config{}, 0).Open(t.Context(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want ErrNotExist", err)
	}
	if msg := core.MapError(err); msg.Code != "FILE005" {
		t.Errorf("code = %s, want FILE005", msg.Code)
	}
}

func TestOpener_LocalTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := NewOpener(S3Config{}, 16).Open(t.Context(), path)
	if !errors.Is(err, core.ErrFileTooLarge) {
		t.Fatalf("error = %v, want ErrFileTooLarge", err)
	}
}

func TestOpener_S3(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{"burials/ut.csv": "a,b\n"}}
	opener := NewOpenerWithClient(getter, 0)

	rows, err := opener.Load(t.Context(), "s3://burials/ut.csv")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "b" {
		t.Errorf("rows = %q", rows)
	}
	if len(getter.calls) != 1 || getter.calls[0] != "burials/ut.csv" {
		t.Errorf("calls = %v", getter.calls)
	}
}

func TestOpener_S3Missing(t *testing.T) {
	opener := NewOpenerWithClient(&fakeGetter{}, 0)

	_, _, err := opener.Open(t.Context(), "s3://burials/none.csv")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := core.MapError(err); msg.Code != "FILE005" {
		t.Errorf("code = %s, want FILE005", msg.Code)
	}
}

func TestOpener_S3TooLarge(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{"b/k.csv": strings.Repeat("x", 64)}}

	_, _, err := NewOpenerWithClient(getter, 10).Open(t.Context(), "s3://b/k.csv")
	if !errors.Is(err, core.ErrFileTooLarge) {
		t.Fatalf("error = %v, want ErrFileTooLarge", err)
	}
}
