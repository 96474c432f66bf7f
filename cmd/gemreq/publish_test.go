package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"gemreq/internal/ai"
	"gemreq/internal/paths"
)

type fakeUploader struct {
	uploads  []string
	copies   []string
	bodies   map[string][]byte
	existing map[string]bool
}

func (f *fakeUploader) UploadFile(ctx context.Context, key, localPath, contentType, cacheControl string) error {
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeUploader) UploadBytes(ctx context.Context, key string, data []byte, contentType, cacheControl string) error {
	f.uploads = append(f.uploads, key)
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.bodies[key] = data
	return nil
}

func (f *fakeUploader) CopyToLatest(ctx context.Context, srcKey, filename, contentType, cacheControl string) error {
	f.copies = append(f.copies, filename)
	return nil
}

func (f *fakeUploader) KeyForDate(t time.Time, filename string) string {
	return "prefix/" + filename
}

func (f *fakeUploader) Exists(ctx context.Context, key string) (bool, error) {
	return f.existing[key], nil
}

func (f *fakeUploader) Bucket() string { return "b" }
func (f *fakeUploader) Prefix() string { return "prefix" }

func stubUploader(t *testing.T, fake *fakeUploader) {
	t.Helper()
	orig := newUploader
	t.Cleanup(func() { newUploader = orig })
	newUploader = func(ctx context.Context, bucket, prefix, region string) (uploader, error) {
		return fake, nil
	}
}

func writeSavedResponse(t *testing.T, date time.Time) {
	t.Helper()
	builder := paths.New("")
	if err := builder.EnsureOutDir(date); err != nil {
		t.Fatalf("EnsureOutDir: %v", err)
	}
	files := map[string]string{
		builder.Payload(date): `{"a":1}`,
		builder.Meta(date):    `{"date":"2025-09-30"}`,
		builder.Raw(date):     "```json\n{\"a\":1}```",
	}
	for path, body := range files {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestPublishUploadsPayloadAndMeta(t *testing.T) {
	chdirTemp(t)
	fake := &fakeUploader{}
	stubUploader(t, fake)
	writeSavedResponse(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC))

	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2"}); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	if len(fake.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(fake.uploads))
	}
	if len(fake.copies) != 2 {
		t.Fatalf("expected 2 copies, got %d", len(fake.copies))
	}
}

func TestPublishStampsMeta(t *testing.T) {
	chdirTemp(t)
	fake := &fakeUploader{}
	stubUploader(t, fake)
	origNow := now
	t.Cleanup(func() { now = origNow })
	now = func() time.Time { return time.Date(2025, 9, 30, 18, 4, 5, 0, time.FixedZone("PDT", -7*3600)) }
	date := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	writeSavedResponse(t, date)

	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2"}); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	body, ok := fake.bodies["prefix/meta.json"]
	if !ok {
		t.Fatalf("meta.json not uploaded from memory: %v", fake.uploads)
	}
	var meta map[string]any
	if err := json.Unmarshal(body, &meta); err != nil {
		t.Fatalf("parse published meta: %v", err)
	}
	if meta["publishedAt"] != "2025-10-01T01:04:05Z" || meta["date"] != "2025-09-30" {
		t.Fatalf("published meta mismatch: %v", meta)
	}

	local, err := os.ReadFile(paths.New("").Meta(date))
	if err != nil {
		t.Fatalf("read local meta: %v", err)
	}
	if strings.Contains(string(local), "publishedAt") {
		t.Fatalf("local meta should be left as saved: %s", local)
	}
}

func TestPublishRejectsCorruptMeta(t *testing.T) {
	chdirTemp(t)
	fake := &fakeUploader{}
	stubUploader(t, fake)
	date := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	writeSavedResponse(t, date)
	if err := os.WriteFile(paths.New("").Meta(date), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2"}); code != 1 {
		t.Fatalf("expected failure for corrupt meta, got %d", code)
	}
	if _, ok := fake.bodies["prefix/meta.json"]; ok {
		t.Fatalf("corrupt meta must not be uploaded")
	}
}

func TestPublishIncludesRaw(t *testing.T) {
	chdirTemp(t)
	fake := &fakeUploader{}
	stubUploader(t, fake)
	writeSavedResponse(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC))

	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2", "--include-raw"}); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	if len(fake.uploads) != 3 || len(fake.copies) != 3 {
		t.Fatalf("expected 3 uploads and copies, got %d/%d", len(fake.uploads), len(fake.copies))
	}
}

func TestPublishRefusesExisting(t *testing.T) {
	chdirTemp(t)
	fake := &fakeUploader{existing: map[string]bool{"prefix/payload.json": true}}
	stubUploader(t, fake)
	writeSavedResponse(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC))

	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2"}); code == 0 {
		t.Fatalf("expected refusal for existing object")
	}
	if len(fake.uploads) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2", "--overwrite"}); code != 0 {
		t.Fatalf("publish --overwrite returned non-zero: %d", code)
	}
}

func TestPublishRequiresBucket(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AWS_S3_BUCKET", "")
	stubUploader(t, &fakeUploader{})
	if code := run([]string{"publish", "--region=us-west-2"}); code != 1 {
		t.Fatalf("expected failure without bucket, got %d", code)
	}
}

func TestPublishMissingLocalFiles(t *testing.T) {
	chdirTemp(t)
	stubUploader(t, &fakeUploader{})
	if code := run([]string{"publish", "--date=2025-09-30", "--bucket=b", "--region=us-west-2"}); code != 1 {
		t.Fatalf("expected failure without saved response, got %d", code)
	}
}

func TestAllRunsRequestThenPublish(t *testing.T) {
	chdirTemp(t)
	stubGenerator(t, &fakeGenerator{reply: &ai.Response{Text: "```json\n{\"ok\":true}\n```"}})
	fake := &fakeUploader{}
	stubUploader(t, fake)
	captureStdout(t)

	if code := run([]string{"all", "--date=2025-09-30", "--prompt=p", "--bucket=b", "--region=us-west-2"}); code != 0 {
		t.Fatalf("all returned non-zero: %d", code)
	}
	if len(fake.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(fake.uploads))
	}
}
