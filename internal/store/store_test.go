package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marksight/pkg/contracts/domain"
)

func TestSnapshotEmptyStore(t *testing.T) {
	s := New()

	_, ok := s.Snapshot()
	assert.False(t, ok)

	// Config without a dataset still does not publish a snapshot.
	s.SetSections(domain.SectionConfig{Explicit: map[string]string{"X": "A"}})
	_, ok = s.Snapshot()
	assert.False(t, ok)
}

func TestReplaceDatasetKeepsConfig(t *testing.T) {
	s := New()
	s.SetSections(domain.SectionConfig{Explicit: map[string]string{"X": "A"}})
	s.SetCredits(domain.CreditConfig{"CS301": 4})

	v := s.ReplaceDataset(domain.Dataset{ID: "d1", Columns: []string{"USN"}})
	assert.Equal(t, int64(3), v)

	state, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "d1", state.Dataset.ID)
	assert.Equal(t, "A", state.Sections.Explicit["X"])
	assert.Equal(t, 4, state.Credits["CS301"])
}

func TestConfigChangeBumpsVersion(t *testing.T) {
	s := New()
	s.ReplaceDataset(domain.Dataset{ID: "d1"})

	first, ok := s.Snapshot()
	require.True(t, ok)

	s.SetCredits(domain.CreditConfig{"CS301": 3})

	second, ok := s.Snapshot()
	require.True(t, ok)
	assert.Greater(t, second.Version, first.Version)
	assert.Same(t, first.Dataset, second.Dataset, "dataset pointer survives config swaps")

	// The previously taken snapshot is untouched.
	assert.Nil(t, first.Credits)
}

func TestClearCredits(t *testing.T) {
	s := New()
	s.ReplaceDataset(domain.Dataset{ID: "d1"})
	s.SetCredits(domain.CreditConfig{"CS301": 3})
	s.SetCredits(nil)

	state, ok := s.Snapshot()
	require.True(t, ok)
	assert.Nil(t, state.Credits)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := New()
	s.ReplaceDataset(domain.Dataset{ID: "d0"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.ReplaceDataset(domain.Dataset{ID: "d"})
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if state, ok := s.Snapshot(); ok {
					_ = state.Dataset.ID
				}
			}
		}()
	}
	wg.Wait()

	state, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, int64(801), state.Version)
}
