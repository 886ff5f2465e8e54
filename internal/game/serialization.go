package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SerializationChecksum is a deterministic digest of a snapshot. Two
// snapshots of the same game state hash equal regardless of when they were
// taken.
type SerializationChecksum struct {
	Hash      string // SHA-256 of the canonical representation
	Timestamp string // when the snapshot was taken
	Version   int    // snapshot version the hash covers
}

// ComputeChecksum hashes the canonical representation of the snapshot.
func (s *Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: s.Timestamp.Format("2006-01-02T15:04:05.000Z"),
		Version:   s.Version,
	}, nil
}

// canonical renders every state-bearing field in a fixed order. The
// timestamp is left out.
func (s *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%s|%d|%d|%d|%d\n",
		s.GameID, s.Name, s.Version, s.Phase, s.CurrentIndex, s.TurnNumber, s.Seed, s.Draws)
	fmt.Fprintf(&buf, "RULES:%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d\n",
		s.Config.StartingCash, s.Config.Salary, s.Config.BailCost, s.Config.MaxJailTurns,
		s.Config.TotalHouses, s.Config.TotalHotels, s.Config.MinPlayers, s.Config.MaxPlayers,
		s.Config.UnmortgageInterestPct, s.Config.DiceHistory, len(s.Config.Layout), len(s.Config.Cards))

	// Seating order matters, so it is not sorted.
	buf.WriteString("ORDER:")
	buf.WriteString(strings.Join(s.Order, ","))
	buf.WriteString("\n")

	players := append([]PlayerSnapshot(nil), s.Players...)
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	for _, p := range players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d|%s|%s|%d|%d|%t\n",
			p.ID, p.Name, p.Cash, p.Position, p.State, p.ResumeState,
			p.JailTurns, p.ConsecutiveDoubles, p.HasRolled)
		props := append([]int(nil), p.Properties...)
		sort.Ints(props)
		fmt.Fprintf(&buf, "  OWNS:%s\n", joinInts(props))
		// Escape card order decides which card is returned first.
		fmt.Fprintf(&buf, "  ESCAPE:%s\n", joinInts(p.EscapeCards))
	}

	props := append([]PropertySnapshot(nil), s.Properties...)
	sort.Slice(props, func(i, j int) bool { return props[i].Position < props[j].Position })
	for _, p := range props {
		fmt.Fprintf(&buf, "PROPERTY:%d|%s|%d|%t|%t\n", p.Position, p.Owner, p.Houses, p.Hotel, p.Mortgaged)
	}

	decks := append([]DeckSnapshot(nil), s.Decks...)
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	for _, d := range decks {
		fmt.Fprintf(&buf, "DECK:%s|%s|%s\n", d.Name, joinInts(d.Draw), joinInts(d.Discard))
	}

	fmt.Fprintf(&buf, "BANK:%d|%d\n", s.HousesAvailable, s.HotelsAvailable)
	fmt.Fprintf(&buf, "DICE:%s|%t|", s.LastDice, s.RolledDouble)
	for _, r := range s.DiceHistory {
		buf.WriteString(r.String())
		buf.WriteString(",")
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "WINNER:%s\n", s.Winner)

	if s.Debt != nil {
		fmt.Fprintf(&buf, "DEBT:%d|%s|%s|%s|%d\n",
			s.Debt.Amount, s.Debt.Creditor, s.Debt.Reason, strings.Join(s.Debt.Payees, ","), s.Debt.PerPayee)
	}
	if t := s.Trade; t != nil {
		fmt.Fprintf(&buf, "TRADE:%s|%s|%d|%d|%s|%s|%d|%d\n",
			t.From, t.To, t.OfferedCash, t.RequestedCash,
			joinInts(t.OfferedProperties), joinInts(t.RequestedProperties),
			t.OfferedEscapeCards, t.RequestedEscapeCards)
	}

	return buf.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

// VerifyChecksum reports whether the snapshot still hashes to expected.
func (s *Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}

	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes encodes the snapshot with gob. Replay files and the
// snapshot cache use this form.
func (s *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a gob snapshot.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decode gob: %v", ErrCorruptSnapshot, err)
	}
	return &s, nil
}

// MarshalSnapshot encodes the snapshot as JSON for the database stores.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a JSON snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrCorruptSnapshot, err)
	}
	return &s, nil
}

// ValidateSerializationRoundtrip checks that gob encoding loses nothing by
// comparing checksums before and after.
func ValidateSerializationRoundtrip(s *Snapshot) error {
	originalChecksum, err := s.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}

	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}

	deserialized, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}

	deserializedChecksum, err := deserialized.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}

	if originalChecksum.Hash != deserializedChecksum.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s",
			originalChecksum.Hash, deserializedChecksum.Hash)
	}

	return nil
}
