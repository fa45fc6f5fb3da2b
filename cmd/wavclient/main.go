// Command wavclient replays a WAV file through the capture relay the same way
// the browser page streams microphone audio, and prints the translation.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/satriahrh/cat-translator/adapters/wavfile"
)

type serverMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Message   string `json:"message"`
	Code      string `json:"error_code"`
	Details   string `json:"details"`
}

func main() {
	addr := flag.String("addr", "localhost:8501", "capture relay address")
	frameDuration := flag.Duration("frame", 20*time.Millisecond, "audio per WebSocket frame")
	realtime := flag.Bool("realtime", false, "pace frames at playback speed")
	timeout := flag.Duration("timeout", 60*time.Second, "time to wait for the translation")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wavclient [flags] recording.wav")
		os.Exit(2)
	}

	rec, err := wavfile.Read(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to read recording: %v", err)
	}
	log.Printf("loaded %s: %d samples, %d Hz, %d channel(s)", flag.Arg(0), len(rec.Samples), rec.SampleRate, rec.Channels)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	if err := sendJSON(c, map[string]interface{}{
		"type":        "recording_start",
		"sample_rate": rec.SampleRate,
		"channels":    rec.Channels,
	}); err != nil {
		log.Fatalf("failed to start recording: %v", err)
	}

	frames := splitFrames(rec, *frameDuration)
	for i, frame := range frames {
		if err := c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			log.Fatalf("failed to send frame %d: %v", i, err)
		}
		if *realtime {
			time.Sleep(*frameDuration)
		}
	}
	log.Printf("sent %d frames", len(frames))

	if err := sendJSON(c, map[string]interface{}{"type": "recording_stop"}); err != nil {
		log.Fatalf("failed to stop recording: %v", err)
	}

	c.SetReadDeadline(time.Now().Add(*timeout))
	for {
		_, payload, err := c.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("ignoring unparseable message: %v", err)
			continue
		}

		switch msg.Type {
		case "processing":
			log.Printf("processing session %s", msg.SessionID)
		case "translation":
			fmt.Println(msg.Text)
			return
		case "warning":
			log.Printf("warning: %s", msg.Message)
			return
		case "error":
			if msg.Code == "frame_conversion_failed" {
				log.Printf("frame rejected: %s", msg.Details)
				continue
			}
			log.Fatalf("error %s: %s", msg.Code, msg.Message)
		}
	}
}

// splitFrames cuts the interleaved samples into little-endian int16 frames
func splitFrames(rec wavfile.Recording, frameDuration time.Duration) [][]byte {
	perFrame := int(frameDuration.Seconds()*float64(rec.SampleRate)) * rec.Channels
	if perFrame <= 0 {
		perFrame = rec.Channels
	}

	var frames [][]byte
	for start := 0; start < len(rec.Samples); start += perFrame {
		end := min(start+perFrame, len(rec.Samples))
		frame := make([]byte, (end-start)*2)
		for i, s := range rec.Samples[start:end] {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
		}
		frames = append(frames, frame)
	}
	return frames
}

func sendJSON(c *websocket.Conn, message map[string]interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}
