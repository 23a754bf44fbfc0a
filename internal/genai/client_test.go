package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// memKeyStore records invalidations for assertions.
type memKeyStore struct {
	key         string
	invalidated []string
}

func (s *memKeyStore) Select() (string, error) {
	if s.key == "" {
		return "", ErrNoUsableKey
	}
	return s.key, nil
}

func (s *memKeyStore) Invalidate(key string) error {
	s.invalidated = append(s.invalidated, key)
	return nil
}

func (s *memKeyStore) ClearInvalid() error { return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *memKeyStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	keys := &memKeyStore{key: "k-test"}
	return NewClient(srv.URL, keys), keys
}

func TestSplitStory(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/story:split" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k-test" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"scenes": ["A hero appears.", "The hero departs."]}`))
	})

	scenes, err := client.SplitStory(context.Background(), "Once upon a time.", 2)
	if err != nil {
		t.Fatalf("SplitStory: %v", err)
	}
	if len(scenes) != 2 || scenes[0] != "A hero appears." {
		t.Errorf("scenes = %v", scenes)
	}
}

func TestSplitStoryEmptyResultIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scenes": []}`))
	})

	_, err := client.SplitStory(context.Background(), "story", 0)
	var mr *MalformedResponseError
	if !errors.As(err, &mr) {
		t.Errorf("err = %v, want MalformedResponseError", err)
	}
}

func TestUnauthorizedInvalidatesKey(t *testing.T) {
	client, keys := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := client.GenerateCharacterImage(context.Background(), "a knight")
	if !IsCredential(err) {
		t.Fatalf("err = %v, want CredentialError", err)
	}
	if len(keys.invalidated) != 1 || keys.invalidated[0] != "k-test" {
		t.Errorf("invalidated = %v, want the active key flagged", keys.invalidated)
	}
}

func TestRateLimitIsQuotaError(t *testing.T) {
	client, keys := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.GenerateCharacterImage(context.Background(), "a knight")
	var qe *QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("err = %v, want QuotaError", err)
	}
	if len(keys.invalidated) != 0 {
		t.Errorf("quota error must not invalidate the key: %v", keys.invalidated)
	}
}

func TestFilteredResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"filtered": true, "detail": "violent content"}`))
	})

	_, err := client.GenerateSceneImage(context.Background(), nil, "a battle")
	if !IsContentFiltered(err) {
		t.Fatalf("err = %v, want ContentFilteredError", err)
	}
	var cf *ContentFilteredError
	errors.As(err, &cf)
	if cf.Detail != "violent content" {
		t.Errorf("detail = %q", cf.Detail)
	}
}

func TestEmptyImageIsFiltered(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"image": ""}`))
	})

	_, err := client.GenerateCharacterImage(context.Background(), "a knight")
	if !IsContentFiltered(err) {
		t.Errorf("err = %v, want ContentFilteredError for a missing image", err)
	}
}

func TestImagePayloadDecodes(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"image": "` + payload + `"}`))
	})

	data, err := client.GenerateCharacterImage(context.Background(), "a knight")
	if err != nil {
		t.Fatalf("GenerateCharacterImage: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("decoded payload = %q", data)
	}
}

func TestGarbageBodyIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.GenerateCharacterImage(context.Background(), "a knight")
	var mr *MalformedResponseError
	if !errors.As(err, &mr) {
		t.Errorf("err = %v, want MalformedResponseError", err)
	}
}

func TestServerErrorCarriesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GenerateCharacterImage(context.Background(), "a knight")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
	if se.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", se.Status)
	}
}

func TestMissingKeyIsCredentialError(t *testing.T) {
	client := NewClient("http://unused.invalid", &memKeyStore{})
	_, err := client.SplitStory(context.Background(), "story", 0)
	if !IsCredential(err) {
		t.Errorf("err = %v, want CredentialError", err)
	}
	if !errors.Is(err, ErrNoUsableKey) {
		t.Errorf("err = %v, want ErrNoUsableKey in the chain", err)
	}
}
