package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// memoryStorage records uploads in memory.
type memoryStorage struct {
	objects map[string][]byte
	failAll bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	if m.failAll {
		return "", errors.New("storage unavailable")
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	return "https://blob.example.com/" + key, nil
}

func (m *memoryStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (m *memoryStorage) GetPresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blob.example.com/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) GetStorageType() string { return "memory" }

// fakeBackend is a scriptable chain member.
type fakeBackend struct {
	name     string
	maxChars int
	err      error
	audio    []byte
	gotText  string
	calls    int
}

func (f *fakeBackend) Name() string  { return f.name }
func (f *fakeBackend) MaxChars() int { return f.maxChars }

func (f *fakeBackend) Synthesize(_ context.Context, text string) ([]byte, string, error) {
	f.calls++
	f.gotText = text
	if f.err != nil {
		return nil, "", f.err
	}
	return f.audio, "audio/mpeg", nil
}

func TestSynthesizer_Synthesize(t *testing.T) {
	Convey("Synthesize walks the fallback chain in order", t, func() {
		ctx := context.Background()

		Convey("the first success wins and the audio is uploaded", func() {
			store := newMemoryStorage()
			primary := &fakeBackend{name: "primary", maxChars: 100, audio: []byte("mp3-bytes")}
			fallback := &fakeBackend{name: "fallback", maxChars: 50, audio: []byte("other")}
			s := NewSynthesizer(store, primary, fallback)

			result, err := s.Synthesize(ctx, "Hello there, world")
			So(err, ShouldBeNil)
			So(result.Backend, ShouldEqual, "primary")
			So(result.AudioURL, ShouldStartWith, "https://blob.example.com/audio/")
			So(fallback.calls, ShouldEqual, 0)
			So(len(store.objects), ShouldEqual, 1)
		})

		Convey("a backend failure moves the chain on, re-truncating per ceiling", func() {
			store := newMemoryStorage()
			long := strings.Repeat("abcdefgh ", 30) // 270 chars
			primary := &fakeBackend{name: "primary", maxChars: 200, err: errors.New("status 401")}
			fallback := &fakeBackend{name: "fallback", maxChars: 40, audio: []byte("mp3")}
			s := NewSynthesizer(store, primary, fallback)

			result, err := s.Synthesize(ctx, long)
			So(err, ShouldBeNil)
			So(result.Backend, ShouldEqual, "fallback")
			So(len([]rune(primary.gotText)), ShouldBeLessThanOrEqualTo, 200)
			So(len([]rune(fallback.gotText)), ShouldBeLessThanOrEqualTo, 40)
		})

		Convey("every backend failing returns a SynthesisError with all failures", func() {
			store := newMemoryStorage()
			primary := &fakeBackend{name: "primary", maxChars: 100, err: errors.New("quota exceeded")}
			fallback := &fakeBackend{name: "fallback", maxChars: 100, err: errors.New("status 503")}
			s := NewSynthesizer(store, primary, fallback)

			_, err := s.Synthesize(ctx, "some text")
			var synthErr *SynthesisError
			So(errors.As(err, &synthErr), ShouldBeTrue)
			So(len(synthErr.Failures), ShouldEqual, 2)
			So(synthErr.Failures["primary"].Error(), ShouldContainSubstring, "quota")
			So(synthErr.Failures["fallback"].Error(), ShouldContainSubstring, "503")
		})

		Convey("a storage failure after a successful synthesis is fatal", func() {
			store := newMemoryStorage()
			store.failAll = true
			primary := &fakeBackend{name: "primary", maxChars: 100, audio: []byte("mp3")}
			s := NewSynthesizer(store, primary)

			_, err := s.Synthesize(ctx, "some text")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "upload")
		})

		Convey("no backends configured is an error", func() {
			s := NewSynthesizer(newMemoryStorage())
			_, err := s.Synthesize(ctx, "text")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFallbackOverHTTP(t *testing.T) {
	Convey("a 401 from the primary HTTP backend falls through to the second", t, func() {
		ctx := context.Background()

		elevenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail": "invalid api key"}`)
		}))
		defer elevenSrv.Close()

		var volcanoText string
		volcanoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Request struct {
					Text string `json:"text"`
				} `json:"request"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			volcanoText = req.Request.Text

			audio := base64.StdEncoding.EncodeToString([]byte("volcano-mp3"))
			fmt.Fprintf(w, `{"code": 3000, "message": "ok", "data": %q}`, audio)
		}))
		defer volcanoSrv.Close()

		primary, err := NewElevenLabs(ElevenLabsConfig{
			APIKey:   "bad-key",
			BaseURL:  elevenSrv.URL,
			VoiceID:  "voice-1",
			MaxChars: 100,
		})
		So(err, ShouldBeNil)

		secondary, err := NewVolcano(VolcanoConfig{
			APIURL:      volcanoSrv.URL,
			AccessToken: "token",
			MaxChars:    20,
		})
		So(err, ShouldBeNil)

		store := newMemoryStorage()
		s := NewSynthesizer(store, primary, secondary)

		result, err := s.Synthesize(ctx, "this caption is longer than twenty characters")
		So(err, ShouldBeNil)
		So(result.Backend, ShouldEqual, "volcano")
		So(len([]rune(volcanoText)), ShouldBeLessThanOrEqualTo, 20)

		stored := false
		for _, b := range store.objects {
			if string(b) == "volcano-mp3" {
				stored = true
			}
		}
		So(stored, ShouldBeTrue)
	})
}
