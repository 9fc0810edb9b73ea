package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultLimit = 20
	DefaultDays  = 3
	MaxDays      = 7
)

// Input is the union of every entrypoint's parameters.
type Input struct {
	Station string `json:"station"`
	State   string `json:"state"`
	Limit   *int   `json:"limit"`
	Days    *int   `json:"days"`
}

func decodeInput(raw json.RawMessage) (Input, error) {
	var in Input
	if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &in); err != nil {
			return in, fmt.Errorf("malformed input: %w", err)
		}
	}
	in.Station = strings.TrimSpace(in.Station)
	in.State = strings.TrimSpace(in.State)
	if in.Limit == nil {
		in.Limit = intPtr(DefaultLimit)
	}
	if in.Days == nil {
		in.Days = intPtr(DefaultDays)
	}
	return in, nil
}

// validateFor checks the parameters the named entrypoint uses.
func (in Input) validateFor(name string) error {
	switch name {
	case "tides", "wind":
		return in.requireStation()
	case "forecast":
		if err := in.requireStation(); err != nil {
			return err
		}
		if d := *in.Days; d < 1 || d > MaxDays {
			return fmt.Errorf("days must be between 1 and %d, got %d", MaxDays, d)
		}
	case "stations":
		if len(in.State) != 2 || !isLetters(in.State) {
			return fmt.Errorf("state must be a 2 letter code, got %q", in.State)
		}
		if *in.Limit < 1 {
			return fmt.Errorf("limit must be positive, got %d", *in.Limit)
		}
	}
	return nil
}

func (in Input) requireStation() error {
	if in.Station == "" {
		return errors.New("station is required")
	}
	return nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func intPtr(i int) *int {
	return &i
}
