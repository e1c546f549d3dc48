package importapp

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkingSet(t *testing.T) {
	ws := NewWorkingSet("printful", "a", "b", "", "a", "c")

	assert.Equal(t, "printful", ws.Provider())
	assert.Equal(t, []string{"a", "b", "c"}, ws.Remaining())
	assert.Equal(t, 3, ws.Len())

	assert.True(t, ws.Remove("b"))
	assert.False(t, ws.Remove("b"))
	assert.False(t, ws.Contains("b"))
	assert.True(t, ws.Contains("c"))
	assert.Equal(t, []string{"a", "c"}, ws.Remaining())
}

func TestWorkingSet_ConcurrentRemove(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	ws := NewWorkingSet("shopify", ids...)

	var wg sync.WaitGroup
	for _, id := range ids {
		if id == "42" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws.Remove(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"42"}, ws.Remaining())
}
