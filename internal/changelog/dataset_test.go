package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_SnapshotBeforeLoad(t *testing.T) {
	assert.Nil(t, NewDataset().Snapshot())
}

func TestDataset_ReplaceNotifiesInOrder(t *testing.T) {
	d := NewDataset()
	var calls []string
	d.Subscribe(func(s *Snapshot) { calls = append(calls, "first:"+s.Version) })
	d.Subscribe(func(s *Snapshot) { calls = append(calls, "second:"+s.Version) })

	d.Replace(&Snapshot{Version: "1.1.0"})

	assert.Equal(t, []string{"first:1.1.0", "second:1.1.0"}, calls)
	require.NotNil(t, d.Snapshot())
	assert.Equal(t, "1.1.0", d.Snapshot().Version)
}

func TestDataset_Unsubscribe(t *testing.T) {
	d := NewDataset()
	var a, b int
	unsubA := d.Subscribe(func(*Snapshot) { a++ })
	d.Subscribe(func(*Snapshot) { b++ })

	d.Replace(&Snapshot{})
	unsubA()
	unsubA()
	d.Replace(&Snapshot{})

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestDataset_SubscriberCanReadDataset(t *testing.T) {
	d := NewDataset()
	var seen *Snapshot
	d.Subscribe(func(*Snapshot) { seen = d.Snapshot() })

	s := &Snapshot{Version: "2.0.0"}
	d.Replace(s)
	assert.Same(t, s, seen)
}
