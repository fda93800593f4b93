package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, region string, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})

	return &Client{s3: client, region: region}, server
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestEnsureBucket_Success(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "PUT" {
			mu.Lock()
			body, _ := io.ReadAll(r.Body)
			capturedBody = body
			mu.Unlock()
			w.WriteHeader(200)
			return
		}
		xmlResponse(w, 404, "")
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	err := client.EnsureBucket(context.Background(), "test-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Contains(string(capturedBody), "LocationConstraint") {
		t.Errorf("us-east-1 create must not send a LocationConstraint, body: %s", capturedBody)
	}
}

func TestEnsureBucket_RegionalLocationConstraint(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "PUT" {
			mu.Lock()
			body, _ := io.ReadAll(r.Body)
			capturedBody = body
			mu.Unlock()
			w.WriteHeader(200)
			return
		}
		xmlResponse(w, 404, "")
	})

	client, server := testClient(t, "eu-west-1", handler)
	defer server.Close()

	err := client.EnsureBucket(context.Background(), "test-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(string(capturedBody), "eu-west-1") {
		t.Errorf("expected LocationConstraint eu-west-1 in body, got: %s", capturedBody)
	}
}

func TestEnsureBucket_AlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 409, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>BucketAlreadyOwnedByYou</Code>
  <Message>Your previous request to create the named bucket succeeded and you already own it.</Message>
  <BucketName>test-bucket</BucketName>
</Error>`)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	err := client.EnsureBucket(context.Background(), "test-bucket")
	if err != nil {
		t.Fatalf("expected nil error for already owned bucket, got: %v", err)
	}
}

func TestEnsureBucket_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	err := client.EnsureBucket(context.Background(), "test-bucket")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to create bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestBucketExists_True(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "HEAD" {
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	exists, err := client.BucketExists(context.Background(), "test-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("expected bucket to exist")
	}
}

func TestBucketExists_False(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 404, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>NotFound</Code>
  <Message>Not Found</Message>
</Error>`)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	exists, err := client.BucketExists(context.Background(), "nonexistent-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected bucket to not exist")
	}
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var capturedContentType string
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "PUT" {
			mu.Lock()
			body, _ := io.ReadAll(r.Body)
			capturedBody = body
			capturedContentType = r.Header.Get("Content-Type")
			mu.Unlock()
			w.WriteHeader(200)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	data := []byte(`{"flows":[]}`)
	err := client.Upload(context.Background(), "test-bucket", "reports/run.json", "application/json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if string(capturedBody) != string(data) {
		t.Errorf("body mismatch: got %q, want %q", capturedBody, data)
	}
	if capturedContentType != "application/json" {
		t.Errorf("content type mismatch: got %q", capturedContentType)
	}
}

func TestUpload_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	err := client.Upload(context.Background(), "test-bucket", "reports/run.json", "application/json", []byte("{}"))
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to put object reports/run.json") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListReports_Success(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" {
			xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <Prefix>reports/</Prefix>
  <KeyCount>2</KeyCount>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>reports/2026-08-20.json</Key></Contents>
  <Contents><Key>reports/2026-08-21.json</Key></Contents>
</ListBucketResult>`)
			return
		}
		w.WriteHeader(404)
	})

	client, server := testClient(t, "us-east-1", handler)
	defer server.Close()

	keys, err := client.ListReports(context.Background(), "test-bucket", "reports/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "reports/2026-08-20.json" {
		t.Errorf("unexpected first key: %s", keys[0])
	}
}
