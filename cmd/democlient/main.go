// Command democlient exercises the server end to end: it authenticates,
// requests synthesized speech over the WebSocket, and saves the streamed
// samples as raw little-endian float32 for inspection.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type clientAuthRequest struct {
	ClientID string `json:"client_id"`
}

type clientAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

type speakRequest struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

type speechInfo struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	FrameCount int    `json:"frame_count"`
	DurationMs int64  `json:"duration_ms"`
}

func main() {
	host := os.Getenv("CERITA_HOST")
	if host == "" {
		host = "localhost:8080"
	}
	text := "A narrow road winds between rice terraces under a pale morning sky."
	if len(os.Args) > 1 {
		text = os.Args[1]
	}

	token, clientID := authenticate(host)
	fmt.Printf("Authenticated as %s\n", clientID)

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	request := speakRequest{Type: "speak", RequestID: "demo-1", Text: text}
	if err := conn.WriteJSON(request); err != nil {
		log.Fatalf("Failed to send speak request: %v", err)
	}
	fmt.Printf("Requested speech for %q\n", text)

	conn.SetReadDeadline(time.Now().Add(2 * time.Minute))

	var info speechInfo
	if err := conn.ReadJSON(&info); err != nil {
		log.Fatalf("Failed to read speech_info: %v", err)
	}
	if info.Type != "speech_info" {
		log.Fatalf("Expected speech_info, got %s", info.Type)
	}
	fmt.Printf("Utterance: %d Hz, %d channel(s), %d frames, %d ms\n",
		info.SampleRate, info.Channels, info.FrameCount, info.DurationMs)

	for ch := 0; ch < info.Channels; ch++ {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Failed to read channel %d: %v", ch, err)
		}
		if messageType != websocket.BinaryMessage {
			log.Fatalf("Expected binary frame for channel %d, got type %d", ch, messageType)
		}

		filename := fmt.Sprintf("utterance_ch%d_%dhz.f32", ch, info.SampleRate)
		if err := os.WriteFile(filename, payload, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", filename, err)
		}
		fmt.Printf("Saved channel %d to %s (%d bytes)\n", ch, filename, len(payload))
	}

	var end struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&end); err != nil {
		log.Fatalf("Failed to read speech_end: %v", err)
	}
	fmt.Printf("Stream closed with %s\n", end.Type)
}

// authenticate obtains a client token from the HTTP API.
func authenticate(host string) (token, clientID string) {
	body, _ := json.Marshal(clientAuthRequest{})
	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/v1/client/auth", host),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		log.Fatalf("Auth request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read auth response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Auth failed with status %d: %s", resp.StatusCode, payload)
	}

	var auth clientAuthResponse
	if err := json.Unmarshal(payload, &auth); err != nil {
		log.Fatalf("Failed to parse auth response: %v", err)
	}
	return auth.Token, auth.ClientID
}
