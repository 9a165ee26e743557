// Package main runs end-to-end chat scenarios against a running API server.
//
// Each scenario uses a fresh session id and drives POST /api/chat, then
// checks the replies and the session/booking endpoints.
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go              # runs all
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go booking-flow # runs one
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	apiBase string
	client  = &http.Client{Timeout: 10 * time.Second}
)

// ---------------------------------------------------------------------------
// Scenario definition
// ---------------------------------------------------------------------------

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed    int
	failed    int
	name      string
	sessionID string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type chatResult struct {
	OK        bool     `json:"ok"`
	Reply     string   `json:"reply"`
	Intent    string   `json:"intent"`
	Missing   []string `json:"missing"`
	BookingID int64    `json:"booking_id"`
}

func (t *T) send(text string) (chatResult, bool) {
	payload, _ := json.Marshal(map[string]string{"message": text, "session_id": t.sessionID})
	resp, err := client.Post(apiBase+"/api/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.fatalf("send %q: %v", text, err)
		return chatResult{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.fatalf("send %q: status %d: %s", text, resp.StatusCode, string(body))
		return chatResult{}, false
	}
	var out chatResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.fatalf("decode reply: %v", err)
		return chatResult{}, false
	}
	fmt.Printf("    > %s\n    < [%s] %s\n", text, out.Intent, out.Reply)
	return out, true
}

func (t *T) session() (map[string]interface{}, bool) {
	resp, err := client.Get(apiBase + "/api/sessions/" + t.sessionID)
	if err != nil {
		t.fatalf("get session: %v", err)
		return nil, false
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.fatalf("decode session: %v", err)
		return nil, false
	}
	return out, true
}

func getStatus(path string) int {
	resp, err := client.Get(apiBase + path)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func containsAll(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if !strings.Contains(lower, strings.ToLower(sub)) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func scenarioBookingFlow(t *T) {
	res, ok := t.send("Book a haircut on 2025-12-20 at 15:00 for Rahul 9876543210")
	if !ok {
		return
	}
	t.check("booking accepted", res.OK && res.Intent == "booking")
	t.check("booking id returned", res.BookingID > 0)
	t.check("reply offers hairstyle suggestions", containsAll(res.Reply, "tentative booking created", "face shape"))

	if res.BookingID > 0 {
		t.check("booking readable", getStatus(fmt.Sprintf("/api/bookings/%d", res.BookingID)) == http.StatusOK)
	}

	res, ok = t.send("yes")
	if !ok {
		return
	}
	t.check("affirmative asks for profile", res.Intent == "affirmative" && containsAny(res.Reply, "face shape"))

	res, ok = t.send("round face, fair skin, female, 28")
	if !ok {
		return
	}
	t.check("profile continuation recommends", res.OK && res.Intent == "profile_continuation")
	t.check("recommendation lists products", containsAll(res.Reply, "long layers", "product suggestions"))

	state, ok := t.session()
	if ok {
		t.check("session back to idle", state["phase"] == "idle")
	}
}

func scenarioIncompleteBooking(t *T) {
	res, ok := t.send("I want to book a facial tomorrow")
	if !ok {
		return
	}
	t.check("booking intent detected", res.Intent == "booking")
	t.check("missing fields listed", len(res.Missing) > 0 && containsAny(res.Reply, "still need"))
	t.check("no booking created", res.BookingID == 0)
}

func scenarioSuggestion(t *T) {
	res, ok := t.send("suggest a hairstyle for an oval face")
	if !ok {
		return
	}
	t.check("suggestion intent", res.Intent == "suggestion")
	t.check("asks for remaining attributes", containsAny(res.Reply, "i need"))

	res, ok = t.send("recommend a style: oval face, medium skin, male, 35")
	if !ok {
		return
	}
	t.check("complete suggestion recommends", res.OK && len(res.Missing) == 0)
}

func scenarioProfileSave(t *T) {
	res, ok := t.send("my name is Priya 9123456780, heart face, olive skin, female, 31")
	if !ok {
		return
	}
	t.check("profile saved", res.OK && res.Intent == "profile_save")
	t.check("reply thanks customer", containsAny(res.Reply, "priya"))
}

func scenarioEmptyMessage(t *T) {
	res, ok := t.send("   ")
	if !ok {
		return
	}
	t.check("empty message rejected", !res.OK && res.Intent == "empty")
}

func scenarioFallback(t *T) {
	res, ok := t.send("what are your opening hours?")
	if !ok {
		return
	}
	t.check("fallback reply", res.OK && res.Intent == "fallback")
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}
	if status := getStatus("/health"); status != http.StatusOK {
		fmt.Fprintf(os.Stderr, "ERROR: %s/health returned %d\n", apiBase, status)
		os.Exit(1)
	}

	scenarios := []scenario{
		{"booking-flow", scenarioBookingFlow},
		{"incomplete-booking", scenarioIncompleteBooking},
		{"suggestion", scenarioSuggestion},
		{"profile-save", scenarioProfileSave},
		{"empty-message", scenarioEmptyMessage},
		{"fallback", scenarioFallback},
	}

	// Filter by name if argument provided
	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed := 0
	totalFailed := 0
	scenarioResults := make([]string, 0)

	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}

		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{name: s.Name, sessionID: "e2e-" + uuid.NewString()}
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed

		status := "PASS"
		if t.failed > 0 {
			status = "FAIL"
		}
		scenarioResults = append(scenarioResults, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range scenarioResults {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		fmt.Println("\nSOME SCENARIOS FAILED")
		os.Exit(1)
	}
	fmt.Println("\nALL SCENARIOS PASSED")
}
