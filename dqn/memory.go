package dqn

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const DefaultMemoryCapacity = 2000

// Transition pairs an encoded position with the value the approximator should
// have predicted for it.
type Transition struct {
	State EncodedState
	Label float64
}

// Memory is a fixed-capacity ring buffer of transitions. Once full, every Push
// overwrites the oldest transition.
type Memory struct {
	capacity    int
	transitions []Transition
	head        int // oldest transition once full
	rng         *rand.Rand
}

func NewMemory(capacity int, rng *rand.Rand) *Memory {
	if capacity <= 0 {
		panic("memory capacity must be positive")
	}
	return &Memory{
		capacity:    capacity,
		transitions: make([]Transition, 0, capacity),
		rng:         rng,
	}
}

func (m *Memory) Push(t Transition) {
	if len(m.transitions) < m.capacity {
		m.transitions = append(m.transitions, t)
		return
	}
	m.transitions[m.head] = t
	m.head = (m.head + 1) % m.capacity
}

func (m *Memory) Len() int { return len(m.transitions) }

func (m *Memory) Cap() int { return m.capacity }

// Transitions returns the stored transitions from oldest to newest.
func (m *Memory) Transitions() []Transition {
	ordered := make([]Transition, 0, len(m.transitions))
	ordered = append(ordered, m.transitions[m.head:]...)
	return append(ordered, m.transitions[:m.head]...)
}

// SampleBatch draws k distinct transitions uniformly at random without
// replacement. The memory is left unchanged.
func (m *Memory) SampleBatch(k int) ([]Transition, error) {
	if k < 1 || k > len(m.transitions) {
		return nil, errors.Wrapf(ErrInsufficientSamples, "batch of %d from %d transitions", k, len(m.transitions))
	}
	batch := make([]Transition, k)
	for i, idx := range m.rng.Perm(len(m.transitions))[:k] {
		batch[i] = m.transitions[idx]
	}
	return batch, nil
}

type transitionRecord struct {
	Size   int
	Values []float64
	Label  float64
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Memory) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(m.capacity); err != nil {
		return nil, err
	}

	ordered := m.Transitions()
	records := make([]transitionRecord, len(ordered))
	for i, t := range ordered {
		records[i] = transitionRecord{Size: t.State.Size(), Values: t.State.Values(), Label: t.Label}
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The random source of
// the receiver is kept.
func (m *Memory) UnmarshalBinary(buf []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(buf))

	var capacity int
	if err := dec.Decode(&capacity); err != nil {
		return err
	}
	if capacity <= 0 {
		return errors.Errorf("memory capacity %d", capacity)
	}

	var records []transitionRecord
	if err := dec.Decode(&records); err != nil {
		return err
	}
	if len(records) > capacity {
		return errors.Errorf("%d transitions exceed capacity %d", len(records), capacity)
	}

	transitions := make([]Transition, 0, capacity)
	for _, r := range records {
		state, err := NewEncodedState(r.Size, r.Values)
		if err != nil {
			return errors.Wrap(err, "decoding transition")
		}
		transitions = append(transitions, Transition{State: state, Label: r.Label})
	}

	m.capacity = capacity
	m.transitions = transitions
	m.head = 0
	return nil
}
