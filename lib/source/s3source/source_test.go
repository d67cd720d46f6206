package s3source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/ValentinKolb/fetchd/lib/source"
	sourcetesting "github.com/ValentinKolb/fetchd/lib/source/testing"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// --------------------------------------------------------------------------
// Fake S3 client
// --------------------------------------------------------------------------

// fakeS3 implements the S3API interface in memory, including paginated
// listings
type fakeS3 struct {
	objects  map[string][]byte
	pageSize int
	listErr  error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	prefix := aws.ToString(params.Prefix)

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if tok := aws.ToString(params.ContinuationToken); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	pageSize := f.pageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	end := start + pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(f.objects[key]))),
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}

	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func fakeFactory(t *testing.T, files map[string][]byte) source.ISource {
	fake := &fakeS3{objects: map[string][]byte{}}
	for name, content := range files {
		fake.objects[name] = content
	}
	return New(fake, Config{Bucket: "test-bucket"})
}

func Test(t *testing.T) {
	sourcetesting.RunSourceTests(t, "S3", fakeFactory)
}

// TestKeyPrefix tests that the configured prefix scopes the listing and
// is stripped from reported names
func TestKeyPrefix(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{
		"files/":           {},
		"files/report.txt": []byte("hello"),
		"files/data.bin":   {0x01, 0x02},
		"other/secret.txt": []byte("nope"),
	}}
	src := New(fake, Config{Bucket: "test-bucket", KeyPrefix: "files/"})
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if string(listing) != "data.bin\nreport.txt\n" {
		t.Errorf("listing = %q, want %q", listing, "data.bin\nreport.txt\n")
	}

	data, err := src.Read("report.txt")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Read returned %q, want %q", data, "hello")
	}
}

// TestListPagination tests that listings spanning multiple pages arrive
// complete
func TestListPagination(t *testing.T) {
	fake := &fakeS3{
		objects: map[string][]byte{
			"a.txt": []byte("a"),
			"b.txt": []byte("b"),
			"c.txt": []byte("c"),
			"d.txt": []byte("d"),
			"e.txt": []byte("e"),
		},
		pageSize: 2,
	}
	src := New(fake, Config{Bucket: "test-bucket"})
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if string(listing) != "a.txt\nb.txt\nc.txt\nd.txt\ne.txt\n" {
		t.Errorf("paginated listing incomplete: %q", listing)
	}
}

// TestListFailure tests the error code for an unreachable bucket
func TestListFailure(t *testing.T) {
	fake := &fakeS3{listErr: errors.New("access denied")}
	src := New(fake, Config{Bucket: "test-bucket"})
	defer src.Close()

	_, err := src.List()
	if err == nil {
		t.Fatal("List succeeded against failing bucket")
	}
	if code := source.CodeOf(err); code != source.RetCListFailed {
		t.Errorf("List failure returned code %d, want RetCListFailed", code)
	}
}

// TestReadMissingKey tests the NoSuchKey mapping
func TestReadMissingKey(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	src := New(fake, Config{Bucket: "test-bucket"})
	defer src.Close()

	_, err := src.Read("missing.txt")
	if err == nil {
		t.Fatal("Read of missing object succeeded")
	}
	if code := source.CodeOf(err); code != source.RetCNotFound {
		t.Errorf("missing object returned code %d, want RetCNotFound", code)
	}
}
