package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podforge/models"
)

func TestSanitizeText(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "printable text passes unchanged",
			in:   "Welcome to the show! Ünïcodé is fine.",
			want: "Welcome to the show! Ünïcodé is fine.",
		},
		{
			name: "low control characters stripped",
			in:   "hello\x00\x07world\n",
			want: "helloworld",
		},
		{
			name: "delete and c1 range stripped",
			in:   "a\x7fbc",
			want: "abc",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := SanitizeText(testCase.in)
			if got != testCase.want {
				t.Fatalf("expected %q, got %q", testCase.want, got)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	var gotPath string
	var gotBody synthesizeBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "test-key")
	audio, err := client.Synthesize(context.Background(), "Hello\nlisteners", "voice-1", models.VoiceSettings{Stability: 0.8})
	require.NoError(t, err)

	assert.Equal(t, []byte("fake-mp3-bytes"), audio)
	assert.Equal(t, "/v1/text-to-speech/voice-1", gotPath)
	assert.Equal(t, "Hellolisteners", gotBody.Text, "control characters must be stripped before synthesis")
	assert.Equal(t, synthesisModel, gotBody.ModelID)
	assert.Equal(t, 0.8, gotBody.VoiceSettings.Stability)
	assert.Equal(t, 0.5, gotBody.VoiceSettings.SimilarityBoost, "unset settings default to 0.5")
	assert.Equal(t, 0.5, gotBody.VoiceSettings.Style)
}

func TestSynthesizeVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"voice not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "test-key")
	_, err := client.Synthesize(context.Background(), "hello", "missing-voice", models.VoiceSettings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSynthesizeEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "test-key")
	_, err := client.Synthesize(context.Background(), "hello", "voice-1", models.VoiceSettings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty audio payload")
}

func TestSynthesizeRejectsControlOnlyText(t *testing.T) {
	client := NewWithBaseURL("http://127.0.0.1:0", "test-key")
	_, err := client.Synthesize(context.Background(), "\x00\x01\n", "voice-1", models.VoiceSettings{})
	require.Error(t, err, "nothing left after sanitization must not reach the vendor")
}

func TestVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/voices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel","preview_url":"https://x/p.mp3","labels":{"accent":"american"}}]}`))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "test-key")
	voices, err := client.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "v1", voices[0].ID)
	assert.Equal(t, "Rachel", voices[0].Name)
	assert.Equal(t, "american", voices[0].Labels["accent"])
}
