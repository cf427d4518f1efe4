package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func TestCache_AddContains(t *testing.T) {
	c := New()
	assert.False(t, c.Contains("+998901194777", "OKEY"))

	c.Add("+998901194777", "OKEY")
	assert.True(t, c.Contains("+998901194777", "OKEY"))
	assert.True(t, c.Contains(" +998901194777 ", "okey"))
	assert.False(t, c.Contains("+998901194777", "OKEY Foods"))
	assert.Equal(t, 1, c.Len())

	c.Add("+998901194777", " okey ")
	assert.Equal(t, 1, c.Len())
}

func TestCache_WarmUp(t *testing.T) {
	c := New()
	leads := []model.Lead{
		{Name: "OKEY", Phone: "+998901194777"},
		{Name: "Завод Кристалл", Phone: "+998123456789"},
		{Name: "", Phone: "+998000000000"},
		{Name: "NoPhone", Phone: "   "},
		{Name: "okey", Phone: "+998901194777"},
	}

	n, err := c.WarmUp(leads)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Contains("  +998901194777", "Okey  "))
	assert.True(t, c.Contains("+998123456789", "ЗАВОД КРИСТАЛЛ"))
	assert.False(t, c.Contains("+998000000000", ""))
}

func TestCache_WarmUpOnce(t *testing.T) {
	c := New()
	_, err := c.WarmUp(nil)
	require.NoError(t, err)

	_, err = c.WarmUp([]model.Lead{{Name: "A", Phone: "1"}})
	assert.ErrorIs(t, err, ErrAlreadyWarm)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			phone := fmt.Sprintf("+99890%07d", i%10)
			c.Add(phone, "Acme")
			_ = c.Contains(phone, "acme")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, c.Len())
}
