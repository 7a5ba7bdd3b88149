// Package protocol implements the token inscription payload format: a JSON
// document prefixed with "data:," embedded in transaction calldata. Numeric
// amounts are serialized as JSON strings, matching the format indexers expect.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CalldataPrefix starts every JSON inscription payload.
const CalldataPrefix = "data:,"

// Op is the operation tag of an inscription payload.
type Op string

const (
	OpDeploy   Op = "deploy"
	OpMint     Op = "mint"
	OpTransfer Op = "transfer"
)

func ParseOp(s string) (Op, error) {
	switch Op(strings.ToLower(s)) {
	case OpDeploy:
		return OpDeploy, nil
	case OpMint:
		return OpMint, nil
	case OpTransfer:
		return OpTransfer, nil
	default:
		return "", fmt.Errorf("invalid operation: %s", s)
	}
}

func (op *Op) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOp(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// Payload is an inscription operation that can be embedded in calldata.
type Payload interface {
	// Calldata returns the full calldata for the operation, including the
	// CalldataPrefix. The output is valid UTF-8.
	Calldata() ([]byte, error)
}

// Deploy declares a new token: max total issuance and per-mint limit.
type Deploy struct {
	P    Protocol
	Tick string
	Max  uint64
	Lim  uint64
}

func (d Deploy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		P    Protocol `json:"p"`
		Op   Op       `json:"op"`
		Tick string   `json:"tick"`
		Max  string   `json:"max"`
		Lim  string   `json:"lim"`
	}{d.P, OpDeploy, d.Tick, strconv.FormatUint(d.Max, 10), strconv.FormatUint(d.Lim, 10)})
}

func (d *Deploy) UnmarshalJSON(data []byte) error {
	var raw struct {
		P    Protocol `json:"p"`
		Op   Op       `json:"op"`
		Tick string   `json:"tick"`
		Max  string   `json:"max"`
		Lim  string   `json:"lim"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Op != OpDeploy {
		return fmt.Errorf("invalid operation: %s, expected deploy", raw.Op)
	}
	max, err := strconv.ParseUint(raw.Max, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid max: %w", err)
	}
	lim, err := strconv.ParseUint(raw.Lim, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lim: %w", err)
	}
	*d = Deploy{P: raw.P, Tick: raw.Tick, Max: max, Lim: lim}
	return nil
}

func (d Deploy) Calldata() ([]byte, error) {
	return encodeCalldata(d)
}

// Mint mints Amt tokens of a deployed tick. ID is an optional unique id some
// protocols require.
type Mint struct {
	P    Protocol
	Tick string
	ID   string
	Amt  uint64
}

func (m Mint) MarshalJSON() ([]byte, error) {
	if m.ID != "" {
		return json.Marshal(struct {
			P    Protocol `json:"p"`
			Op   Op       `json:"op"`
			Tick string   `json:"tick"`
			ID   string   `json:"id"`
			Amt  string   `json:"amt"`
		}{m.P, OpMint, m.Tick, m.ID, strconv.FormatUint(m.Amt, 10)})
	}
	return json.Marshal(struct {
		P    Protocol `json:"p"`
		Op   Op       `json:"op"`
		Tick string   `json:"tick"`
		Amt  string   `json:"amt"`
	}{m.P, OpMint, m.Tick, strconv.FormatUint(m.Amt, 10)})
}

func (m *Mint) UnmarshalJSON(data []byte) error {
	var raw struct {
		P    Protocol `json:"p"`
		Op   Op       `json:"op"`
		Tick string   `json:"tick"`
		ID   string   `json:"id"`
		Amt  string   `json:"amt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Op != OpMint {
		return fmt.Errorf("invalid operation: %s, expected mint", raw.Op)
	}
	amt, err := strconv.ParseUint(raw.Amt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amt: %w", err)
	}
	*m = Mint{P: raw.P, Tick: raw.Tick, ID: raw.ID, Amt: amt}
	return nil
}

func (m Mint) Calldata() ([]byte, error) {
	return encodeCalldata(m)
}

// TransferItem is one recipient of a transfer.
type TransferItem struct {
	Recv common.Address `json:"recv"`
	Amt  int64          `json:"amt"`
}

// Transfer moves tokens of a tick to one or more recipients.
type Transfer struct {
	P    Protocol
	Tick string
	To   []TransferItem
}

func (t Transfer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		P    Protocol       `json:"p"`
		Op   Op             `json:"op"`
		Tick string         `json:"tick"`
		To   []TransferItem `json:"to"`
	}{t.P, OpTransfer, t.Tick, t.To})
}

func (t *Transfer) UnmarshalJSON(data []byte) error {
	var raw struct {
		P    Protocol       `json:"p"`
		Op   Op             `json:"op"`
		Tick string         `json:"tick"`
		To   []TransferItem `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Op != OpTransfer {
		return fmt.Errorf("invalid operation: %s, expected transfer", raw.Op)
	}
	*t = Transfer{P: raw.P, Tick: raw.Tick, To: raw.To}
	return nil
}

func (t Transfer) Calldata() ([]byte, error) {
	return encodeCalldata(t)
}

func encodeCalldata(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inscription payload: %w", err)
	}
	return append([]byte(CalldataPrefix), body...), nil
}

// DecodePayload parses s into dst, tolerating a leading CalldataPrefix so that
// users can paste a full calldata string.
func DecodePayload(s string, dst any) error {
	raw := strings.TrimPrefix(s, CalldataPrefix)
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to unmarshal inscription payload: %w", err)
	}
	return nil
}
