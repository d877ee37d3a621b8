package kvstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type cartDoc struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

func TestMemoryStore_SaveLoadClear(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	want := cartDoc{Items: []string{"1", "3-color:red"}, Count: 2}
	require.NoError(t, store.Save("cart:user1", want))

	var got cartDoc
	require.NoError(t, store.Load("cart:user1", &got))
	require.Equal(t, want, got)

	// loaded values are copies
	got.Items[0] = "mutated"
	var again cartDoc
	require.NoError(t, store.Load("cart:user1", &again))
	require.Equal(t, "1", again.Items[0])

	require.NoError(t, store.Clear("cart:user1"))
	require.ErrorIs(t, store.Load("cart:user1", &got), ErrNotFound)
	require.NoError(t, store.Clear("cart:user1"), "clearing twice is fine")
}

func TestMemoryStore_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(s *MemoryStore)
		load    any
		wantErr error
	}{
		{
			name:    "missing_key",
			prepare: func(s *MemoryStore) {},
			load:    &cartDoc{},
			wantErr: ErrNotFound,
		},
		{
			name: "type_mismatch",
			prepare: func(s *MemoryStore) {
				require.NoError(t, s.Save("k", "a string"))
			},
			load: &cartDoc{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewMemoryStore()
			tc.prepare(s)
			err := s.Load("k", tc.load)
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}

	t.Run("unencodable_value", func(t *testing.T) {
		t.Parallel()
		require.Error(t, NewMemoryStore().Save("k", make(chan int)))
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			require.NoError(t, store.Save(key, cartDoc{Count: i}))
			var doc cartDoc
			require.NoError(t, store.Load(key, &doc))
		}()
	}
	wg.Wait()
}
