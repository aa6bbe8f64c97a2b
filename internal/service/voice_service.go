package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"

	"github.com/fahrezy/interview-pilot/internal/config"
)

// VoiceEventType enumerates the events the voice provider emits over the
// call's listen socket.
type VoiceEventType string

const (
	VoiceEventSpeechStart VoiceEventType = "speech-start"
	VoiceEventSpeechEnd   VoiceEventType = "speech-end"
	VoiceEventTranscript  VoiceEventType = "transcript"
	VoiceEventCallEnd     VoiceEventType = "call-end"
	VoiceEventError       VoiceEventType = "error"
)

type VoiceEvent struct {
	Type  VoiceEventType
	Role  string // "assistant" | "user", transcript events only
	Text  string
	Final bool
	Err   error
}

// AssistantVariables is the variable map injected into the hosted assistant's
// conversation script.
type AssistantVariables struct {
	JobRole     string
	Description string
	Difficulty  string
	TechStack   string // syllabus topics, comma separated
	Questions   string // optional full system instruction, provider quirk
}

// VoiceCall is one realtime call against the voice provider.
//
// Start may fail and must leave the call stoppable either way; Stop is safe
// to invoke repeatedly or before Start.
type VoiceCall interface {
	Start(ctx context.Context, vars AssistantVariables) error
	Stop()
	SetMuted(muted bool)
	Subscribe(fn func(VoiceEvent)) (unsubscribe func())
}

type VoiceServiceInterface interface {
	NewCall() VoiceCall
}

type VapiService struct {
	client *resty.Client
	cfg    *config.VoiceConfig
}

func NewVapiService() *VapiService {
	cfg := config.LoadVoiceConfig()
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	return &VapiService{client: client, cfg: cfg}
}

func (s *VapiService) NewCall() VoiceCall {
	return &vapiCall{svc: s, subscribers: make(map[int]func(VoiceEvent))}
}

type vapiCall struct {
	svc *VapiService

	mu          sync.Mutex
	callID      string
	conn        *websocket.Conn
	stopped     bool
	muted       bool
	nextSubID   int
	subscribers map[int]func(VoiceEvent)
}

type createCallResponse struct {
	ID      string `json:"id"`
	Monitor struct {
		ListenURL string `json:"listenUrl"`
	} `json:"monitor"`
}

func (c *vapiCall) Start(ctx context.Context, vars AssistantVariables) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return fmt.Errorf("voice call already stopped")
	}
	if c.callID != "" {
		c.mu.Unlock()
		return fmt.Errorf("voice call already started")
	}
	c.mu.Unlock()

	body := map[string]any{
		"assistantId": c.svc.cfg.AssistantID,
		"assistantOverrides": map[string]any{
			"variableValues": map[string]string{
				"jobRole":     vars.JobRole,
				"description": vars.Description,
				"difficulty":  vars.Difficulty,
				"techStack":   vars.TechStack,
				"questions":   vars.Questions,
			},
		},
	}

	var created createCallResponse
	resp, err := c.svc.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		Post("/call")
	if err != nil {
		return fmt.Errorf("create voice call: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("create voice call: provider returned %s", resp.Status())
	}
	if created.ID == "" || created.Monitor.ListenURL == "" {
		return fmt.Errorf("create voice call: malformed provider response")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, created.Monitor.ListenURL, nil)
	if err != nil {
		// Call record exists on the provider but we can't hear it; tear
		// it down so the user isn't left in a half-open call.
		c.stopRemote(created.ID)
		return fmt.Errorf("dial voice call listen socket: %w", err)
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		_ = conn.Close()
		c.stopRemote(created.ID)
		return fmt.Errorf("voice call stopped during start")
	}
	c.callID = created.ID
	c.conn = conn
	c.mu.Unlock()

	go c.readPump(conn)
	return nil
}

// Stop ends the call. Safe to call any number of times, including before a
// successful Start.
func (c *vapiCall) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	callID := c.callID
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteJSON(map[string]string{"type": "end-call"})
		_ = conn.Close()
	}
	if callID != "" {
		c.stopRemote(callID)
	}
}

func (c *vapiCall) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return
	}
	msgType := "unmute-assistant-input"
	if muted {
		msgType = "mute-assistant-input"
	}
	if err := conn.WriteJSON(map[string]string{"type": "control", "control": msgType}); err != nil {
		log.Printf("voice call: set muted failed: %v", err)
	}
}

func (c *vapiCall) Subscribe(fn func(VoiceEvent)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *vapiCall) stopRemote(callID string) {
	resp, err := c.svc.client.R().
		SetBody(map[string]string{"status": "ended"}).
		Patch("/call/" + callID)
	if err != nil {
		log.Printf("voice call %s: stop request failed: %v", callID, err)
		return
	}
	if resp.IsError() {
		log.Printf("voice call %s: stop request returned %s", callID, resp.Status())
	}
}

type listenMessage struct {
	Type           string `json:"type"`
	Status         string `json:"status"`
	Role           string `json:"role"`
	Transcript     string `json:"transcript"`
	TranscriptType string `json:"transcriptType"`
}

func (c *vapiCall) readPump(conn *websocket.Conn) {
	defer c.dispatch(VoiceEvent{Type: VoiceEventCallEnd})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stopped := c.stopped
			c.mu.Unlock()
			if !stopped {
				c.dispatch(VoiceEvent{Type: VoiceEventError, Err: err})
			}
			return
		}

		var msg listenMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			// Binary audio frames share the socket with JSON events.
			continue
		}

		switch msg.Type {
		case "speech-update":
			if msg.Status == "started" {
				c.dispatch(VoiceEvent{Type: VoiceEventSpeechStart, Role: msg.Role})
			} else if msg.Status == "stopped" {
				c.dispatch(VoiceEvent{Type: VoiceEventSpeechEnd, Role: msg.Role})
			}
		case "transcript":
			c.dispatch(VoiceEvent{
				Type:  VoiceEventTranscript,
				Role:  msg.Role,
				Text:  strings.TrimSpace(msg.Transcript),
				Final: msg.TranscriptType == "final",
			})
		case "end-of-call-report", "call-end":
			return
		}
	}
}

func (c *vapiCall) dispatch(ev VoiceEvent) {
	c.mu.Lock()
	subs := make([]func(VoiceEvent), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
