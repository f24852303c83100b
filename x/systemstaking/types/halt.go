package types

import (
	"fmt"
	"strings"
)

// HaltState pauses automated rebalancing and payouts. Round rotation and
// redemption settlement keep running while halted.
type HaltState struct {
	Active            bool   `json:"active"`
	Reason            string `json:"reason,omitempty"`
	TriggeredBy       string `json:"triggered_by,omitempty"`
	TriggeredAtHeight int64  `json:"triggered_at_height,omitempty"`
	TriggeredAtUnix   int64  `json:"triggered_at_unix,omitempty"`
}

func (h HaltState) Validate() error {
	if h.Active && strings.TrimSpace(h.Reason) == "" {
		return fmt.Errorf("halt reason cannot be empty")
	}
	if h.TriggeredAtHeight < 0 {
		return fmt.Errorf("halt height cannot be negative")
	}
	return nil
}

// MsgSetHalt halts or resumes automated processing.
type MsgSetHalt struct {
	Authority string `json:"authority"`
	Halted    bool   `json:"halted"`
	Reason    string `json:"reason,omitempty"`
}

type MsgSetHaltResponse struct {
	State HaltState `json:"state"`
}

func (m MsgSetHalt) ValidateBasic() error {
	if err := validateAuthority(m.Authority); err != nil {
		return err
	}
	if m.Halted && strings.TrimSpace(m.Reason) == "" {
		return fmt.Errorf("halt reason cannot be empty")
	}
	return nil
}
