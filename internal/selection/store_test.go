package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_ApplyAndSnapshot(t *testing.T) {
	t.Parallel()

	st := NewStore(New(""))
	got := st.Apply(SelectInspection(id(3)), SelectModel(id(4)))
	assert.Equal(t, int64(4), *got.SelectedModel)

	// Mutating a returned snapshot does not leak into the store.
	got.EditedSubparts[1] = 1
	assert.Empty(t, st.Snapshot().EditedSubparts)
}

func TestStore_TryApply(t *testing.T) {
	t.Parallel()

	st := NewStore(New(""))
	notUpdating := func(s State) bool { return !s.Updating }

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := st.TryApply(notUpdating, SetUpdating(true))
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for ok := range wins {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.True(t, st.Snapshot().Updating)
}
